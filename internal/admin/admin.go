// Package admin serves the loopback status surface: health and recent
// interaction history.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"interactbox/internal/history"
	"interactbox/internal/server"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// HTTP server timeouts
	HTTPReadTimeout  = 10 * time.Second
	HTTPWriteTimeout = 10 * time.Second
	HTTPIdleTimeout  = 60 * time.Second

	// Request timeout for middleware
	RequestTimeout = 30 * time.Second

	ShutdownTimeout = 5 * time.Second

	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// Store is the read side of the interaction history.
type Store interface {
	GetLatestInteraction(ctx context.Context) (*history.InteractionRecord, error)
	GetRecentInteractions(ctx context.Context, limit int) ([]history.InteractionRecord, error)
	CountByOutcome(ctx context.Context) (map[string]int64, error)
}

// Server represents the admin HTTP server
type Server struct {
	Routes    []string // paths served by the interaction engine
	History   Store    // nil when history is disabled
	Logger    *slog.Logger
	RateLimit int // requests per minute per IP; zero disables

	startedAt time.Time
}

// NewServer creates a new admin server instance
func NewServer(routes []string, store Store, logger *slog.Logger, rateLimit int) *Server {
	return &Server{
		Routes:    routes,
		History:   store,
		Logger:    logger,
		RateLimit: rateLimit,
		startedAt: time.Now(),
	}
}

// Router creates and configures the HTTP router
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	// Logging middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				s.Logger.Info("admin_request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds())
			}()

			next.ServeHTTP(ww, r)
		})
	})

	if s.RateLimit > 0 {
		r.Use(NewRateLimitMiddleware(s.RateLimit, s.Logger))
	}

	r.Get("/health", s.HandleHealth)
	r.Get("/interactions/recent", s.HandleRecent)

	return r
}

// ListenAndServe serves the admin router on addr until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  HTTPReadTimeout,
		WriteTimeout: HTTPWriteTimeout,
		IdleTimeout:  HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting admin server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("admin server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// NewRateLimitMiddleware limits requests per minute per client IP.
func NewRateLimitMiddleware(limit int, logger *slog.Logger) func(http.Handler) http.Handler {
	limiter := server.NewPerMinuteLimiter(limit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := server.RemoteIP(r.RemoteAddr)

			if !limiter.Allow(ip) {
				logger.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
