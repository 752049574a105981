package htmlfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestReadDocumentUTF8(t *testing.T) {
	html := "<!DOCTYPE html><html><body><h1>שלום</h1></body></html>"
	path := writeTemp(t, "page.html", []byte(html))

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Content != html {
		t.Errorf("content = %q, want %q", doc.Content, html)
	}
	if doc.Encoding != "UTF-8" {
		t.Errorf("encoding = %q, want UTF-8", doc.Encoding)
	}
}

func TestReadDocumentUTF8BOM(t *testing.T) {
	html := "<html><body>hello</body></html>"
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(html)...)
	path := writeTemp(t, "bom.html", data)

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Content != html {
		t.Errorf("content = %q, want %q (BOM stripped)", doc.Content, html)
	}
}

func TestReadDocumentUTF16LE(t *testing.T) {
	html := "<html><body>שלום</body></html>"
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte(html))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	path := writeTemp(t, "utf16.html", data)

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Content != html {
		t.Errorf("content = %q, want %q", doc.Content, html)
	}
	if doc.Encoding != "UTF-16LE" {
		t.Errorf("encoding = %q, want UTF-16LE", doc.Encoding)
	}
}

func TestReadDocumentWindows1255(t *testing.T) {
	html := "<html><body>עיריית מודיעין</body></html>"
	enc := charmap.Windows1255.NewEncoder()
	data, err := enc.Bytes([]byte(html))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	path := writeTemp(t, "legacy.htm", data)

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Content != html {
		t.Errorf("content = %q, want %q", doc.Content, html)
	}
	if doc.Encoding != "Windows-1255" {
		t.Errorf("encoding = %q, want Windows-1255", doc.Encoding)
	}
}

func TestReadDocumentRejectsOtherExtensions(t *testing.T) {
	path := writeTemp(t, "notes.txt", []byte("hello"))

	if _, err := ReadDocument(path); err == nil {
		t.Fatal("expected error for .txt file, got nil")
	} else if !strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("error = %v, want unsupported file type", err)
	}
}

func TestReadDocumentMissingFile(t *testing.T) {
	if _, err := ReadDocument(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
