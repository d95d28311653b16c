package auth

import (
	"context"

	"bookshelf/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=auth

// UserStore is the subset of the user service auth depends on.
type UserStore interface {
	Register(ctx context.Context, email, username, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(userID, username, email string) (string, error)
}
