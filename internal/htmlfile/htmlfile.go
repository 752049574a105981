package htmlfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MaxFileSize caps how large a local document may be before we refuse
// to load it into the editor.
const MaxFileSize = 4 * 1024 * 1024

// Document is a local HTML file decoded to UTF-8.
type Document struct {
	Path     string
	Content  string
	Encoding string
	Size     int64
}

// ReadDocument loads an .html or .htm file from disk and transcodes it
// to UTF-8. Encoding is detected from the byte order mark when present;
// otherwise the content is checked for valid UTF-8 before falling back
// to the legacy code pages we see in practice (Windows-1255 for Hebrew
// documents, then Windows-1252).
func ReadDocument(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".html" && ext != ".htm" {
		return nil, fmt.Errorf("unsupported file type %q, expected .html or .htm", ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content, encName, err := detectAndConvert(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file: %w", err)
	}

	return &Document{
		Path:     path,
		Content:  content,
		Encoding: encName,
		Size:     info.Size(),
	}, nil
}

func detectAndConvert(data []byte) (string, string, error) {
	// UTF-8 BOM
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return string(data[3:]), "UTF-8", nil
	}

	// UTF-16 LE BOM
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		content, err := decodeWith(data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))
		if err != nil {
			return "", "", err
		}
		return content, "UTF-16LE", nil
	}

	// UTF-16 BE BOM
	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		content, err := decodeWith(data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM))
		if err != nil {
			return "", "", err
		}
		return content, "UTF-16BE", nil
	}

	if utf8.Valid(data) {
		return string(data), "UTF-8", nil
	}

	// Hebrew documents from older municipal tooling arrive as Windows-1255.
	if content, err := decodeWith(data, charmap.Windows1255); err == nil {
		if strings.ContainsAny(content, "אבגדהוזחטיכלמנסעפצקרשת") {
			return content, "Windows-1255", nil
		}
	}

	if content, err := decodeWith(data, charmap.Windows1252); err == nil {
		return content, "Windows-1252", nil
	}

	// Last resort: keep the bytes, replacing invalid sequences.
	return string(bytes.ToValidUTF8(data, []byte("�"))), "UTF-8-fallback", nil
}

func decodeWith(data []byte, enc encoding.Encoding) (string, error) {
	reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
