package book

import (
	"context"
	"errors"
	"time"

	"bookshelf/internal/platform/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const bookColumns = `book_id, title, authors, description, image, link, created_at`

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.BookID, &b.Title, &b.Authors, &b.Description, &b.Image, &b.Link, &b.CreatedAt)
	if b.Authors == nil {
		b.Authors = []string{}
	}
	return b, err
}

func collectBooks(rows pgx.Rows) ([]Book, error) {
	defer rows.Close()
	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Find(ctx context.Context, bookID string) (Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE book_id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (book_id, title, authors, description, image, link)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	authors := b.Authors
	if authors == nil {
		authors = []string{}
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, b.BookID, b.Title, authors, b.Description, b.Image, b.Link).Scan(&b.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return err
	}
	b.Authors = authors
	return nil
}

func (r *PostgresRepo) FillBlanks(ctx context.Context, b Book) (Book, error) {
	const query = `
		UPDATE books SET
			description = CASE WHEN description = '' THEN $2 ELSE description END,
			image       = CASE WHEN image = '' THEN $3 ELSE image END,
			link        = CASE WHEN link = '' THEN $4 ELSE link END
		WHERE book_id = $1
		RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	out, err := scanBook(r.db.QueryRow(timeoutCtx, query, b.BookID, b.Description, b.Image, b.Link))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return out, nil
}

func (r *PostgresRepo) Search(ctx context.Context, q string, limit int) ([]Book, error) {
	const query = `
		SELECT ` + bookColumns + `
		FROM books
		WHERE title ILIKE $1 ESCAPE '\'
		   OR EXISTS (SELECT 1 FROM unnest(authors) AS a WHERE a ILIKE $1 ESCAPE '\')
		ORDER BY title, book_id
		LIMIT $2`

	pattern := "%" + postgres.EscapeLike(q) + "%"

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, pattern, limit)
	if err != nil {
		return nil, err
	}
	return collectBooks(rows)
}

func (r *PostgresRepo) List(ctx context.Context, q ListQuery) ([]Book, error) {
	const query = `
		SELECT ` + bookColumns + `
		FROM books
		WHERE $1 = '' OR (title, book_id) > ($2, $1)
		ORDER BY title, book_id
		LIMIT $3`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, q.After.AfterID, q.After.AfterTitle, q.Limit)
	if err != nil {
		return nil, err
	}
	return collectBooks(rows)
}
