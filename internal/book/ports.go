package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=book

// Repository defines the contract for catalog storage.
type Repository interface {
	Find(ctx context.Context, bookID string) (Book, error)
	// Create inserts b and returns ErrDuplicateKey when the id is taken.
	Create(ctx context.Context, b *Book) error
	// FillBlanks sets description, image and link only where the stored value is empty.
	FillBlanks(ctx context.Context, b Book) (Book, error)
	Search(ctx context.Context, q string, limit int) ([]Book, error)
	List(ctx context.Context, q ListQuery) ([]Book, error)
}

// Upstream searches the external book provider.
type Upstream interface {
	Search(ctx context.Context, q string, limit int) ([]Book, error)
}
