// Package web serves the featurecraft browser UI: the Generate Tasks and
// Feature Builder screens.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/featurecraft/internal/infrastructure/i18n"
	"github.com/felixgeelhaar/featurecraft/pkg/application"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/session"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
	"github.com/felixgeelhaar/featurecraft/pkg/tracker"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionCookie = "featurecraft_session"

// Backlog is what the screens need from the application layer.
type Backlog interface {
	Projects(ctx context.Context) ([]workitem.Project, error)
	Features(ctx context.Context, project string) ([]workitem.WorkItem, error)
	GenerateTasks(ctx context.Context, project string, feature workitem.WorkItem, lang application.Language) (*application.GenerateResult, error)
	CreateFeature(ctx context.Context, project string, p workitem.Proposal) (*tracker.CreateResult, error)
}

// Server is the UI HTTP server.
type Server struct {
	addr     string
	backlog  Backlog
	sessions *session.Store
	logger   *slog.Logger
	server   *http.Server
	tmpl     *template.Template
}

// NewServer parses the embedded templates and prepares the server.
func NewServer(addr string, backlog Backlog, sessions *session.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sessions == nil {
		sessions = session.NewStore(i18n.DefaultLang, 0)
	}

	funcMap := template.FuncMap{
		"selected": func(a, b any) bool { return fmt.Sprint(a) == fmt.Sprint(b) },
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		addr:     addr,
		backlog:  backlog,
		sessions: sessions,
		logger:   logger,
		tmpl:     tmpl,
	}, nil
}

// Handler returns the routed handler with request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /tasks", s.handleTasks)
	mux.HandleFunc("POST /tasks/generate", s.handleGenerate)
	mux.HandleFunc("GET /features/new", s.handleFeatureForm)
	mux.HandleFunc("POST /features", s.handleCreateFeature)
	mux.HandleFunc("POST /nav", s.handleNav)
	mux.HandleFunc("POST /lang", s.handleLang)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.withRequestLogging(mux)
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		// Generation waits on the model, so writes get a long deadline.
		WriteTimeout: 5 * time.Minute,
	}

	s.logger.Info("web server starting", "addr", s.addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// session returns the caller's session, issuing a cookie for new ones.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	sess, created, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, nil
}

func (s *Server) render(w http.ResponseWriter, name string, data *PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
