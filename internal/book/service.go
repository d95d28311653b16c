package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service provides catalog operations.
type Service struct {
	repo     Repository
	upstream Upstream
}

// NewService creates a catalog service. upstream may be nil, in which case
// Lookup reports ErrUpstreamUnavailable.
func NewService(repo Repository, upstream Upstream) *Service {
	return &Service{repo: repo, upstream: upstream}
}

// Find returns the book with the given upstream id.
func (s *Service) Find(ctx context.Context, bookID string) (Book, error) {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return Book{}, ErrNotFound
	}
	return s.repo.Find(ctx, bookID)
}

// FindOrCreate returns the stored book for in.BookID, creating it from in when
// absent. An existing record is returned unchanged. When a concurrent writer
// wins the insert, the winner's record is re-read and only its blank optional
// fields may be filled from in.
func (s *Service) FindOrCreate(ctx context.Context, in Input) (Book, error) {
	in = in.Normalize()
	if in.BookID == "" || in.Title == "" {
		return Book{}, ErrInvalidInput
	}

	existing, err := s.repo.Find(ctx, in.BookID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Book{}, fmt.Errorf("find book %s: %w", in.BookID, err)
	}

	b := in.toBook()
	err = s.repo.Create(ctx, &b)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrDuplicateKey) {
		return Book{}, fmt.Errorf("create book %s: %w", in.BookID, err)
	}

	winner, err := s.repo.Find(ctx, in.BookID)
	if err != nil {
		return Book{}, fmt.Errorf("re-read book %s after conflict: %w", in.BookID, err)
	}
	if !hasBlankOptional(winner) {
		return winner, nil
	}
	filled, err := s.repo.FillBlanks(ctx, in.toBook())
	if err != nil {
		// The winner's record is complete enough to save against.
		return winner, nil
	}
	return filled, nil
}

func hasBlankOptional(b Book) bool {
	return b.Description == "" || b.Image == "" || b.Link == ""
}

// Search matches q case-insensitively against titles and authors. No match is
// an empty slice, not an error. At most MaxSearchResults books are returned;
// truncated reports that more matches exist.
func (s *Service) Search(ctx context.Context, q string) (books []Book, truncated bool, err error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, false, ErrInvalidInput
	}
	books, err = s.repo.Search(ctx, q, MaxSearchResults+1)
	if err != nil {
		return nil, false, fmt.Errorf("search books: %w", err)
	}
	if len(books) > MaxSearchResults {
		books = books[:MaxSearchResults]
		truncated = true
	}
	if books == nil {
		books = []Book{}
	}
	return books, truncated, nil
}

// List pages through the whole catalog. The returned cursor is empty on the last page.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Book, string, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}

	// One extra row tells us whether another page exists.
	page := q
	page.Limit = q.Limit + 1
	books, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, "", fmt.Errorf("list books: %w", err)
	}

	next := ""
	if len(books) > q.Limit {
		books = books[:q.Limit]
		last := books[len(books)-1]
		next = EncodeCursor(CursorData{AfterTitle: last.Title, AfterID: last.BookID})
	}

	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = withFallbacks(b)
	}
	return out, next, nil
}

// Lookup queries the upstream provider. On failure it returns an empty slice
// together with the error.
func (s *Service) Lookup(ctx context.Context, q string, limit int) ([]Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Book{}, ErrInvalidInput
	}
	if s.upstream == nil {
		return []Book{}, ErrUpstreamUnavailable
	}
	if limit <= 0 || limit > 40 {
		limit = 20
	}
	books, err := s.upstream.Search(ctx, q, limit)
	if err != nil {
		return []Book{}, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}
