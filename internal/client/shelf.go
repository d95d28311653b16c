package client

import (
	"context"
	"sync"

	"bookshelf/internal/book"
	"bookshelf/internal/reconcile"
)

// Shelf is the client's view of the saved list. Every server answer is
// merged into the latest list, so responses that arrive out of order cannot
// drop books the user already sees.
type Shelf struct {
	client *Client

	mu     sync.Mutex
	latest []book.Book
}

func NewShelf(c *Client) *Shelf {
	return &Shelf{client: c}
}

// Books returns a copy of the current list.
func (s *Shelf) Books() []book.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return reconcile.Merge(s.latest, nil)
}

// Refresh fetches the saved list and merges it into the current one.
func (s *Shelf) Refresh(ctx context.Context) ([]book.Book, error) {
	u, err := s.client.Me(ctx)
	if err != nil {
		return s.Books(), err
	}
	return s.merge(u.SavedBooks), nil
}

// Save stores in on the server and merges the answer.
func (s *Shelf) Save(ctx context.Context, in book.Input) ([]book.Book, error) {
	u, err := s.client.SaveBook(ctx, in)
	if err != nil {
		return s.Books(), err
	}
	return s.merge(u.SavedBooks), nil
}

// Remove deletes bookID on the server. The id is filtered out of the current
// list before the answer is merged so it does not come back.
func (s *Shelf) Remove(ctx context.Context, bookID string) ([]book.Book, error) {
	u, err := s.client.RemoveBook(ctx, bookID)
	if err != nil {
		return s.Books(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = reconcile.Merge(reconcile.Remove(s.latest, bookID), reconcile.Remove(u.SavedBooks, bookID))
	return reconcile.Merge(s.latest, nil), nil
}

func (s *Shelf) merge(incoming []book.Book) []book.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = reconcile.Merge(s.latest, incoming)
	return reconcile.Merge(s.latest, nil)
}
