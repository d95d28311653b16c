package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/platform/cache"
	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/platform/postgres"
	"bookshelf/internal/savedbooks"
	"bookshelf/internal/user"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat, cfg.Environment)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := postgres.Open(ctx, cfg.DatabaseDSN, 2*time.Second)
	if err != nil {
		log.Error("cannot open database", "dsn", config.RedactDSN(cfg.DatabaseDSN), "error", err)
		return err
	}
	defer dbPool.Close()
	log.Info("database connection OK")

	var upstream book.Upstream = googlebooks.NewClient(googlebooks.Options{
		BaseURL:    cfg.GoogleBooksURL,
		APIKey:     cfg.GoogleBooksAPIKey,
		RPS:        cfg.GoogleBooksRPS,
		MaxRetries: cfg.GoogleBooksRetry,
	})
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.IsProduction() && cfg.RedisPassword != "")
		if err != nil {
			log.Warn("search cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			upstream = cache.NewSearchCache(redisClient, upstream, cfg.SearchCacheTTL, log)
			log.Info("search cache enabled", "ttl", cfg.SearchCacheTTL)
		}
	}

	bookService := book.NewService(book.NewPostgresRepo(dbPool, cfg.DBTimeout), upstream)
	userService := user.NewService(user.NewPostgresRepo(dbPool, cfg.DBTimeout))
	tokens := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := newServer(cfg, services{
		books:    bookService,
		users:    userService,
		auth:     auth.NewService(userService, tokens),
		saved:    savedbooks.NewService(savedbooks.NewPostgresRepo(dbPool, cfg.DBTimeout), bookService, userService),
		verifier: tokens,
		ready:    dbPool.Ping,
	}, registry, log)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
