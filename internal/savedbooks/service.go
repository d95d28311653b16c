package savedbooks

import (
	"context"
	"fmt"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/user"
)

type Service struct {
	repo    Repository
	catalog Catalog
	users   Users
}

func NewService(repo Repository, catalog Catalog, users Users) *Service {
	return &Service{repo: repo, catalog: catalog, users: users}
}

// Add puts the book into userID's saved set, creating the catalog record on
// first save, and returns the updated user. Saving a book twice is not an error.
func (s *Service) Add(ctx context.Context, userID string, in book.Input) (user.User, error) {
	if strings.TrimSpace(userID) == "" {
		return user.User{}, ErrUnauthorized
	}

	b, err := s.catalog.FindOrCreate(ctx, in)
	if err != nil {
		return user.User{}, err
	}
	if err := s.repo.Insert(ctx, userID, b.BookID); err != nil {
		return user.User{}, fmt.Errorf("save book %s: %w", b.BookID, err)
	}
	return s.users.GetByID(ctx, userID)
}

// Remove drops bookID from userID's saved set and returns the updated user.
// Removing a book that is not saved is not an error.
func (s *Service) Remove(ctx context.Context, userID, bookID string) (user.User, error) {
	if strings.TrimSpace(userID) == "" {
		return user.User{}, ErrUnauthorized
	}

	bookID = strings.TrimSpace(bookID)
	if bookID != "" {
		if err := s.repo.Delete(ctx, userID, bookID); err != nil {
			return user.User{}, fmt.Errorf("remove book %s: %w", bookID, err)
		}
	}
	return s.users.GetByID(ctx, userID)
}
