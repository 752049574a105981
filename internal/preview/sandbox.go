// Package preview renders standalone documents in an isolated browser
// context served over a local HTTP endpoint. The served host page embeds
// the document in a sandboxed iframe, fully replaces its content on every
// change, and re-executes inline scripts after each replacement.
package preview

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"webcanvas/internal/logging"
)

//go:embed static/index.html
var hostPage []byte

// State of the rendering surface.
type State int

const (
	StateEmpty State = iota
	StateRendering
	StateRendered
)

// Sandbox is an isolated rendering surface for standalone documents.
// Load replaces the surface content wholesale; it never patches. A load of
// suspect markup still renders best-effort and reports through the syntax
// warning callback instead of failing.
type Sandbox interface {
	Load(doc string) error
	OnSyntaxWarning(fn func(tags []string))
}

// Server hosts the browser preview and implements Sandbox.
type Server struct {
	addr string
	mux  *http.ServeMux

	mu            sync.Mutex
	listener      net.Listener
	doc           string
	version       uint64
	renderID      string
	state         State
	syntaxSuspect bool
	warnFn        func(tags []string)
	fixFn         func()
}

func NewServer(addr string) *Server {
	s := &Server{addr: addr, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /", s.handleHost)
	s.mux.HandleFunc("GET /document", s.handleDocument)
	s.mux.HandleFunc("GET /version", s.handleVersion)
	s.mux.HandleFunc("POST /fix", s.handleFix)

	return s
}

// Start begins serving the preview page. The server runs until Close.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		// Serve returns ErrServerClosed-style errors on Close; nothing to do.
		if err := http.Serve(listener, s); err != nil {
			logging.Debug("preview server stopped: %v", err)
		}
	}()

	logging.Info("preview server listening on %s", s.addr)
	return nil
}

func (s *Server) Close() error {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()

	if listener == nil {
		return nil
	}
	return listener.Close()
}

// URL returns the browser-facing address of the preview page.
func (s *Server) URL() string {
	return "http://" + s.addr
}

// State returns the current render state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SyntaxSuspect reports whether the last loaded document had unclosed tags.
func (s *Server) SyntaxSuspect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syntaxSuspect
}

// OnSyntaxWarning registers a callback invoked with the unclosed tag names
// whenever a suspect document is loaded.
func (s *Server) OnSyntaxWarning(fn func(tags []string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnFn = fn
}

// OnFixCode registers a callback invoked when the user clicks the fix-code
// affordance in the preview page.
func (s *Server) OnFixCode(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixFn = fn
}

// Load replaces the rendered document. Empty or whitespace-only documents
// are ignored with no state change. If the surface is not mounted yet the
// attempt is logged and abandoned; the caller retries on the next content
// change. The version counter advances even when the content is identical
// so the host page remounts and re-runs scripts.
func (s *Server) Load(doc string) error {
	if strings.TrimSpace(doc) == "" {
		logging.Debug("ignoring empty document load")
		return nil
	}

	s.mu.Lock()
	if s.listener == nil {
		s.mu.Unlock()
		logging.Error("preview surface not mounted, abandoning render")
		return nil
	}

	s.state = StateRendering
	unclosed := UnclosedTags(doc)
	s.syntaxSuspect = len(unclosed) > 0

	s.doc = doc
	s.version++
	s.renderID = uuid.New().String()
	s.state = StateRendered
	warnFn := s.warnFn
	s.mu.Unlock()

	logging.Info("preview updated: length=%d unclosed=%d", len(doc), len(unclosed))

	if len(unclosed) > 0 {
		logging.Error("syntax errors found in HTML: %v", unclosed)
		if warnFn != nil {
			warnFn(unclosed)
		}
	}

	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHost(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(hostPage)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc := s.doc
	renderID := s.renderID
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Render-Id", renderID)
	fmt.Fprint(w, doc)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	payload := struct {
		Version       uint64 `json:"version"`
		SyntaxSuspect bool   `json:"syntaxSuspect"`
		RenderID      string `json:"renderId"`
	}{s.version, s.syntaxSuspect, s.renderID}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("failed to encode version payload: %v", err)
	}
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fixFn := s.fixFn
	s.mu.Unlock()

	if fixFn == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	fixFn()
	w.WriteHeader(http.StatusAccepted)
}
