package savedbooks

import (
	"context"
	"time"

	"bookshelf/internal/platform/postgres"
	"bookshelf/internal/user"

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

// Insert adds the pair unless it exists. The user id is matched as text, like
// every other user lookup, so an id that is not a stored uuid is user.ErrNotFound.
func (r *PostgresRepo) Insert(ctx context.Context, userID, bookID string) error {
	const query = `
	WITH owner AS (
		SELECT id FROM users WHERE id::text = $1
	), saved AS (
		INSERT INTO saved_books (user_id, book_id)
		SELECT id, $2 FROM owner
		ON CONFLICT (user_id, book_id) DO NOTHING
	)
	SELECT EXISTS (SELECT 1 FROM owner)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var found bool
	err := r.db.QueryRow(timeoutCtx, query, userID, bookID).Scan(&found)
	if postgres.IsForeignKeyViolation(err) {
		return user.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !found {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, bookID string) error {
	const query = `DELETE FROM saved_books WHERE user_id::text = $1 AND book_id = $2`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query, userID, bookID)
	return err
}
