package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/user"
)

type Service struct {
	users  UserStore
	tokens TokenIssuer
}

func NewService(users UserStore, tokens TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Signup registers the account and returns a token for it.
// user.ErrAlreadyExists is passed through when the email or username is taken.
func (s *Service) Signup(ctx context.Context, in SignupInput) (Result, error) {
	if err := crypto.ValidatePasswordStrength(in.Password); err != nil {
		return Result{}, err
	}
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Register(ctx, in.Email, in.Username, hash)
	if err != nil {
		return Result{}, err
	}
	return s.result(u)
}

// Login checks the credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (Result, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return Result{}, fmt.Errorf("load user: %w", err)
		}
		// Compare against a throwaway hash so unknown emails cost the same as
		// wrong passwords.
		crypto.VerifyPassword(dummyHash(), password)
		return Result{}, ErrUnauthorized
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return Result{}, ErrUnauthorized
	}
	return s.result(u)
}

func (s *Service) result(u user.User) (Result, error) {
	token, err := s.tokens.Issue(u.ID, u.Username, u.Email)
	if err != nil {
		return Result{}, fmt.Errorf("issue token: %w", err)
	}
	return Result{Token: token, User: u}, nil
}

var dummyHash = sync.OnceValue(func() string {
	h, _ := crypto.HashPassword("timing-equalizer-0")
	return h
})
