package savedbooks

import (
	"context"

	"bookshelf/internal/book"
	"bookshelf/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=savedbooks

// Repository stores set membership keyed by (user id, book id).
type Repository interface {
	// Insert is a no-op when the pair already exists.
	Insert(ctx context.Context, userID, bookID string) error
	// Delete is a no-op when the pair does not exist.
	Delete(ctx context.Context, userID, bookID string) error
}

// Catalog resolves the shared book record for a save.
type Catalog interface {
	FindOrCreate(ctx context.Context, in book.Input) (book.Book, error)
}

// Users reloads the owner after a change.
type Users interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}
