package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/httpx"
	"bookshelf/internal/savedbooks"
	"bookshelf/internal/user"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// services bundles everything the router needs. ready reports whether the
// backing stores can serve traffic.
type services struct {
	books    *book.Service
	users    *user.Service
	auth     *auth.Service
	saved    *savedbooks.Service
	verifier httpx.TokenVerifier
	ready    func(ctx context.Context) error
}

// server is the assembled HTTP handler and the resources it must release.
type server struct {
	handler   http.Handler
	rateLimit *httpx.RateLimitMiddleware
}

func (s *server) Close() {
	s.rateLimit.Stop()
}

func newServer(cfg *config.Config, svc services, registry *prometheus.Registry, logger *slog.Logger) *server {
	bookHandler := book.NewHTTPHandler(svc.books, logger)
	userHandler := user.NewHTTPHandler(svc.users, logger)
	authHandler := auth.NewHTTPHandler(svc.auth, logger)
	savedHandler := savedbooks.NewHTTPHandler(svc.saved, logger)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := svc.ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	router.HandleFunc("POST /users/register", authHandler.Register)
	router.HandleFunc("POST /users/login", authHandler.Login)
	router.HandleFunc("GET /users", userHandler.List)
	router.HandleFunc("GET /users/{username}", userHandler.GetByUsername)

	router.HandleFunc("GET /me", userHandler.GetCurrentUser)
	router.HandleFunc("POST /me/books", savedHandler.Add)
	router.HandleFunc("DELETE /me/books/{bookId}", savedHandler.Remove)

	router.HandleFunc("GET /books", bookHandler.List)
	router.HandleFunc("GET /books/search", bookHandler.Search)
	router.HandleFunc("GET /books/lookup", bookHandler.Lookup)
	router.HandleFunc("GET /books/{bookId}", bookHandler.Get)

	metrics := httpx.NewMetrics(registry)
	rateLimit := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// First listed is outermost. Metrics sits next to the router so it sees
	// the matched pattern; the access log sits inside auth so it sees the user.
	handler := httpx.Chain(router,
		httpx.RecoveryMiddleware(logger),
		httpx.RequestIDMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.IsProduction()),
		httpx.CORSMiddleware(cfg.CORSOrigins),
		rateLimit.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
		httpx.AuthMiddleware(svc.verifier, logger),
		httpx.AccessLogMiddleware(logger),
		metrics.Middleware,
	)

	return &server{handler: handler, rateLimit: rateLimit}
}
