// Package dashboard serves a read-only web view of the session store.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/memoria-dev/memoria/internal/session"
)

// DefaultPort is the dashboard port when none is configured.
const DefaultPort = 3456

//go:embed templates/layout.html templates/style.css
var assets embed.FS

// Server is the dashboard HTTP server. It never mutates session data.
type Server struct {
	store    *session.Store
	logger   *charmlog.Logger
	tmpl     *template.Template
	md       goldmark.Markdown
	listener net.Listener
	server   *http.Server
}

// page is the data passed to every template.
type page struct {
	Title    string
	Project  string
	Sessions []*session.Session
	Session  *session.Session
}

// New builds a Server over store without binding a listener.
// Use Handler for tests or Listen to serve.
func New(store *session.Store, logger *charmlog.Logger) (*Server, error) {
	if logger == nil {
		logger = charmlog.New(io.Discard)
	}
	s := &Server{
		store:  store,
		logger: logger,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}

	tmpl, err := template.New("layout.html").Funcs(template.FuncMap{
		"formatTime":   formatTime,
		"markdown":     s.renderMarkdown,
		"isPlain":      func(f session.Form) bool { return f == session.Plain },
		"outcomeClass": outcomeClass,
	}).ParseFS(assets, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("dashboard: parsing templates: %w", err)
	}
	s.tmpl = tmpl
	return s, nil
}

// Handler returns the dashboard's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleList)
	mux.HandleFunc("GET /session/{id}", s.handleDetail)
	mux.HandleFunc("GET /api/sessions", s.handleAPIList)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleAPISession)
	mux.HandleFunc("GET /static/style.css", s.handleStyle)
	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

// Listen binds addr (e.g. "127.0.0.1:3456"; port 0 picks a free port).
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("dashboard: binding listener: %w", err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start serves HTTP requests until Stop is called. Call after Listen.
func (s *Server) Start() error {
	err := s.server.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// --- Handlers ---

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	if !s.store.IsInitialized() {
		s.render(w, http.StatusOK, "notinit", page{})
		return
	}
	sessions, err := s.store.LoadAll()
	if err != nil {
		s.fail(w, err)
		return
	}
	p := page{Sessions: sessions}
	if cfg, _ := s.store.Config(); cfg != nil {
		p.Project = cfg.Project
	}
	s.render(w, http.StatusOK, "list", p)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	if !s.store.IsInitialized() {
		s.render(w, http.StatusOK, "notinit", page{})
		return
	}
	sess, err := s.load(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if sess == nil {
		s.handleNotFound(w, r)
		return
	}
	s.render(w, http.StatusOK, "detail", page{Title: sess.Title, Session: sess})
}

func (s *Server) handleAPIList(w http.ResponseWriter, _ *http.Request) {
	if !s.store.IsInitialized() {
		writeError(w, http.StatusServiceUnavailable, "memoria not initialized")
		return
	}
	entries, err := s.store.Entries()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, map[string]any{"sessions": entries})
}

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	if !s.store.IsInitialized() {
		writeError(w, http.StatusServiceUnavailable, "memoria not initialized")
		return
	}
	id := r.PathValue("id")
	sess, err := s.load(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "Session not found: "+id)
		return
	}
	writeJSON(w, map[string]any{"session": sess})
}

func (s *Server) handleStyle(w http.ResponseWriter, _ *http.Request) {
	css, err := assets.ReadFile("templates/style.css")
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(css)
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusNotFound, "notfound", page{Title: "Not Found"})
}

// --- Helpers ---

// load treats ids that cannot name a session file as absent.
func (s *Server) load(id string) (*session.Session, error) {
	sess, err := s.store.Load(id)
	if errors.Is(err, session.ErrInvalidID) {
		return nil, nil
	}
	return sess, err
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data page) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("dashboard request failed", "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// renderMarkdown converts a session summary to HTML. Raw HTML in the
// summary is escaped by goldmark's default renderer.
func (s *Server) renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(buf.String())
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// outcomeClass styles attempted solutions by their outcome prefix.
func outcomeClass(outcome string) string {
	lower := strings.ToLower(outcome)
	switch {
	case strings.HasPrefix(lower, "success"):
		return "success"
	case strings.HasPrefix(lower, "failed"):
		return "failed"
	default:
		return ""
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("encoding response: %v", err), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
