// Command seed fills the catalog with books from Google Books.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/platform/postgres"
)

func main() {
	var (
		subjects   = flag.String("subjects", "fiction,science,history,philosophy,programming", "Comma separated subjects to import")
		perSubject = flag.Int("per-subject", 20, "Books to request per subject (max 40)")
		booksMax   = flag.Int("max", 200, "Stop after this many books, 0 for no limit")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Stderr, "info", "", "").Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := postgres.Open(ctx, cfg.DatabaseDSN, 5*cfg.DBTimeout)
	if err != nil {
		log.Error("connect to database failed", "dsn", config.RedactDSN(cfg.DatabaseDSN), "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	up := googlebooks.NewClient(googlebooks.Options{
		BaseURL:    cfg.GoogleBooksURL,
		APIKey:     cfg.GoogleBooksAPIKey,
		RPS:        cfg.GoogleBooksRPS,
		MaxRetries: cfg.GoogleBooksRetry,
	})
	catalog := book.NewService(book.NewPostgresRepo(pool, cfg.DBTimeout), up)

	stats, err := seedCatalog(ctx, up, catalog, seedConfig{
		Subjects:   parseSubjects(*subjects),
		PerSubject: min(max(*perSubject, 1), 40),
		BooksMax:   *booksMax,
	}, log)
	if err != nil {
		log.Error("seed failed", "error", err, "imported", stats.Imported)
		os.Exit(1)
	}

	var total int
	_ = pool.QueryRow(ctx, "SELECT COUNT(*) FROM books").Scan(&total)
	log.Info("seed finished", "imported", stats.Imported, "skipped", stats.Skipped, "failed_subjects", stats.Failed, "catalog_total", total)
}
