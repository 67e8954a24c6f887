// Package api serves the review operations as a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hpungsan/inklings/internal/ops"
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the API routes over deps. session may be shared with
// another surface in the same process; nil starts a fresh one.
func NewRouter(deps *ops.Deps, session *ops.Session, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if session == nil {
		session = ops.NewSession(deps)
	}
	h := &Handlers{deps: deps, session: session, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(securityHeaders)

	r.Route("/deck", func(r chi.Router) {
		r.Get("/", h.HandleToday)
		r.Post("/reset", h.HandleReset)
		r.Get("/stats", h.HandleStats)
	})

	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.HandleSessionCurrent)
		r.Post("/next", h.HandleSessionNext)
		r.Post("/prev", h.HandleSessionPrev)
	})

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.HandleShow)
		r.Post("/", h.HandleCreate)
		r.Post("/entry", h.HandleEntry)
		r.Post("/snooze", h.HandleSnooze)
		r.Post("/rename", h.HandleRename)
	})

	r.Get("/activity", h.HandleActivity)

	return r
}

// NewServer creates the HTTP server listening on the configured address.
func NewServer(deps *ops.Deps, session *ops.Session, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              deps.Config.HTTPAddr,
		Handler:           NewRouter(deps, session, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("api listening", "addr", "http://"+srv.Addr)
	if strings.HasPrefix(srv.Addr, "0.0.0.0") || strings.HasPrefix(srv.Addr, ":") || strings.Contains(srv.Addr, "[::]") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network", "addr", srv.Addr)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
