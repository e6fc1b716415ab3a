// Package web serves the calendar over HTTP: a JSON API for the pager and
// an HTML page for browsers and snapshots.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"cleancal/internal/config"
	"cleancal/internal/events"
	appLog "cleancal/internal/log"
	"cleancal/internal/model"
	"cleancal/internal/pager"
	"cleancal/internal/prefs"
)

// Refresher triggers an immediate reload of the event set.
type Refresher interface {
	RefreshNow(ctx context.Context) (*events.Store, bool)
	NoteDefaultView(view model.ViewType)
	LastRun() time.Time
}

type Server struct {
	ctrl      *pager.Controller
	prefs     prefs.Store
	refresher Refresher
	auth      *config.BasicAuthConfig
	mux       *http.ServeMux
}

type Option func(*Server)

// WithPrefs makes POST /api/view store the chosen view as the default.
func WithPrefs(s prefs.Store) Option {
	return func(srv *Server) { srv.prefs = s }
}

func WithRefresher(r Refresher) Option {
	return func(srv *Server) { srv.refresher = r }
}

// WithBasicAuth protects everything except /health. A nil or incomplete
// config leaves the server open.
func WithBasicAuth(a *config.BasicAuthConfig) Option {
	return func(srv *Server) { srv.auth = a }
}

func NewServer(ctrl *pager.Controller, opts ...Option) *Server {
	s := &Server{
		ctrl: ctrl,
		mux:  http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled")
		h = s.basicAuthMiddleware(h)
	}
	return logRequests(h)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/page", s.handlePage)
	s.mux.HandleFunc("POST /api/view", s.handleView)
	s.mux.HandleFunc("POST /api/scroll", s.handleScroll)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	s.mux.HandleFunc("GET /calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) basicAuthEnabled() bool {
	return s.auth != nil && s.auth.Username != "" && s.auth.Password != ""
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username, password := s.auth.Username, s.auth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="cleancal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"took", time.Since(start).Round(time.Microsecond),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
