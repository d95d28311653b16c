// Package auth implements signup and login on top of the user store and the
// token issuer.
package auth

import (
	"errors"

	"bookshelf/internal/user"
)

// ErrUnauthorized is returned for unknown emails and wrong passwords alike.
var ErrUnauthorized = errors.New("invalid credentials")

// SignupInput is the registration request.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,password_strength"`
}

// LoginInput is the login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Result is returned by Signup and Login.
type Result struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}
