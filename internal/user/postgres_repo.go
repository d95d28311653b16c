package user

import (
	"context"
	"errors"
	"time"

	"bookshelf/internal/book"
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

const userColumns = `id::text, username, email, password_hash, created_at`

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (username, email, password_hash)
	VALUES ($1, $2, $3)
	RETURNING id::text, created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, u.Username, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, "users_username_key", "users_email_key") {
			return ErrAlreadyExists
		}
		return err
	}
	if u.SavedBooks == nil {
		u.SavedBooks = []book.Book{}
	}
	return nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	// Ids that are not uuids can never match; comparing as text keeps the
	// driver from rejecting them.
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id::text = $1 LIMIT 1`, id)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

func (r *PostgresRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 LIMIT 1`, username)
}

func (r *PostgresRepo) getOne(ctx context.Context, query string, arg string) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u User
	err := r.db.QueryRow(timeoutCtx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	saved, err := r.savedBooks(timeoutCtx, []string{u.ID})
	if err != nil {
		return User{}, err
	}
	u.SavedBooks = saved[u.ID]
	if u.SavedBooks == nil {
		u.SavedBooks = []book.Book{}
	}
	return u, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY username`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, err
	}
	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		users = append(users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	saved, err := r.savedBooks(timeoutCtx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].SavedBooks = saved[users[i].ID]
		if users[i].SavedBooks == nil {
			users[i].SavedBooks = []book.Book{}
		}
	}
	return users, nil
}

// savedBooks loads the saved books of every given user keyed by user id.
func (r *PostgresRepo) savedBooks(ctx context.Context, userIDs []string) (map[string][]book.Book, error) {
	const query = `
	SELECT s.user_id::text, b.book_id, b.title, b.authors, b.description, b.image, b.link, b.created_at
	FROM saved_books s
	JOIN books b ON b.book_id = s.book_id
	WHERE s.user_id::text = ANY($1)
	ORDER BY b.title, b.book_id
	`
	out := make(map[string][]book.Book, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			userID string
			b      book.Book
		)
		if err := rows.Scan(&userID, &b.BookID, &b.Title, &b.Authors, &b.Description, &b.Image, &b.Link, &b.CreatedAt); err != nil {
			return nil, err
		}
		if b.Authors == nil {
			b.Authors = []string{}
		}
		out[userID] = append(out[userID], b)
	}
	return out, rows.Err()
}
