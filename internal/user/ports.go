package user

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=user

// Repository stores accounts. Every read returns the saved books ordered by
// title then book id.
type Repository interface {
	// Create fills in the generated id and created_at. It returns
	// ErrAlreadyExists when the email or username is taken.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context) ([]User, error)
}
