package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bookshelf/internal/book"
)

// Catalog is where imported books are stored.
type Catalog interface {
	FindOrCreate(ctx context.Context, in book.Input) (book.Book, error)
}

type seedConfig struct {
	Subjects   []string
	PerSubject int
	BooksMax   int
}

type seedStats struct {
	Imported int
	Skipped  int
	Failed   int
}

// seedCatalog looks up each subject upstream and stores the results until
// BooksMax books have been imported. A failing subject is logged and skipped.
func seedCatalog(ctx context.Context, up book.Upstream, catalog Catalog, cfg seedConfig, log *slog.Logger) (seedStats, error) {
	var stats seedStats
	seen := map[string]struct{}{}

	for _, subject := range cfg.Subjects {
		if cfg.BooksMax > 0 && stats.Imported >= cfg.BooksMax {
			break
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		books, err := up.Search(ctx, "subject:"+subject, cfg.PerSubject)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return stats, err
			}
			log.Warn("subject lookup failed", "subject", subject, "error", err)
			stats.Failed++
			continue
		}

		for _, b := range books {
			if cfg.BooksMax > 0 && stats.Imported >= cfg.BooksMax {
				break
			}
			if _, dup := seen[b.BookID]; dup {
				stats.Skipped++
				continue
			}
			seen[b.BookID] = struct{}{}

			in := book.Input{
				BookID:      b.BookID,
				Title:       b.Title,
				Authors:     b.Authors,
				Description: b.Description,
				Image:       b.Image,
				Link:        b.Link,
			}
			if _, err := catalog.FindOrCreate(ctx, in); err != nil {
				return stats, fmt.Errorf("store %s: %w", b.BookID, err)
			}
			stats.Imported++
		}
		log.Info("subject imported", "subject", subject, "total", stats.Imported)
	}
	return stats, nil
}

func parseSubjects(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
