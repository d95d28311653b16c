// Package user owns accounts and reads each account together with its saved books.
package user

import (
	"errors"
	"time"

	"bookshelf/internal/book"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	SavedBooks   []book.Book `json:"saved_books"`
	CreatedAt    time.Time   `json:"created_at"`
}
