package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"wxcal/internal/calendar"
	"wxcal/internal/config"
	appLog "wxcal/internal/log"
)

// Server exposes one calendar view over HTTP: a JSON API, an HTML page
// and the last rendered preview. All access to the view is serialised by
// mu, so each request sees and mutates the view as a single interaction.
type Server struct {
	cfg   *config.Config
	debug bool
	mux   *http.ServeMux

	mu   sync.Mutex
	view *calendar.View
}

// NewServer constructs a Server around view.
func NewServer(cfg *config.Config, view *calendar.View, debug bool) *Server {
	s := &Server{
		cfg:   cfg,
		debug: debug,
		mux:   http.NewServeMux(),
		view:  view,
	}
	s.registerRoutes()
	return s
}

// Do runs fn with exclusive access to the view. Scheduled jobs (rollover,
// ICS refresh) use it to mutate the view between requests.
func (s *Server) Do(fn func(v *calendar.View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.view)
}

// Handler returns the root handler, wrapped in Basic Auth when configured.
func (s *Server) Handler() http.Handler {
	h := s.logRequests(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Serve listens on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen, "debug", s.debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/month", s.handleMonth)
	s.mux.HandleFunc("POST /api/month/next", s.handleNextMonth)
	s.mux.HandleFunc("POST /api/month/prev", s.handlePrevMonth)
	s.mux.HandleFunc("POST /api/select", s.handleSelect)
	s.mux.HandleFunc("GET /api/day", s.handleDay)
	s.mux.HandleFunc("PATCH /api/draft", s.handleDraft)
	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.mux.HandleFunc("GET /api/export.ics", s.handleExport)

	s.mux.HandleFunc("GET /calendar", s.handlePage)
	s.mux.HandleFunc("POST /calendar/next", s.pageAction(func(v *calendar.View, _ *http.Request) error {
		v.NextMonth()
		return nil
	}))
	s.mux.HandleFunc("POST /calendar/prev", s.pageAction(func(v *calendar.View, _ *http.Request) error {
		v.PreviousMonth()
		return nil
	}))
	s.mux.HandleFunc("POST /calendar/today", s.pageAction(func(v *calendar.View, _ *http.Request) error {
		v.GoToToday()
		return nil
	}))
	s.mux.HandleFunc("POST /calendar/select", s.pageAction(pageSelect))
	s.mux.HandleFunc("POST /calendar/events", s.pageAction(pageSubmit))
	s.mux.HandleFunc("POST /calendar/events/{id}/delete", s.pageAction(func(v *calendar.View, r *http.Request) error {
		v.Delete(r.PathValue("id"))
		return nil
	}))

	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePreview serves the last PNG written by the snapshot pipeline.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, PreviewPath(s.cfg))
}

// PreviewPath is where snapshots are written and served from.
func PreviewPath(cfg *config.Config) string {
	return filepath.Join(cfg.CacheDir, "preview.png")
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth rather than lock everyone out.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="wxcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
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

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
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
