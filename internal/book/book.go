// Package book is the shared catalog of books keyed by their upstream volume id.
package book

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a book is not in the catalog.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicateKey is returned by Repository.Create when the id already exists.
	ErrDuplicateKey = errors.New("book already exists")
	// ErrInvalidInput is returned when a required field is blank.
	ErrInvalidInput = errors.New("invalid book input")
	// ErrUpstreamUnavailable is returned when no upstream search provider is configured.
	ErrUpstreamUnavailable = errors.New("upstream search unavailable")
)

// Book is a catalog entry. BookID is the upstream provider's identifier and the
// dedup key everywhere in the system.
type Book struct {
	BookID      string    `json:"book_id"`
	Title       string    `json:"title"`
	Authors     []string  `json:"authors"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// Input carries the fields supplied by a client when saving a book.
type Input struct {
	BookID      string   `json:"book_id" validate:"required,max=128"`
	Title       string   `json:"title" validate:"required,max=512"`
	Authors     []string `json:"authors" validate:"max=50,dive,max=256"`
	Description string   `json:"description" validate:"max=20000"`
	Image       string   `json:"image" validate:"omitempty,url,max=2048"`
	Link        string   `json:"link" validate:"omitempty,url,max=2048"`
}

// Normalize trims whitespace and drops blank authors.
func (in Input) Normalize() Input {
	in.BookID = strings.TrimSpace(in.BookID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	in.Link = strings.TrimSpace(in.Link)

	authors := make([]string, 0, len(in.Authors))
	for _, a := range in.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	in.Authors = authors
	return in
}

func (in Input) toBook() Book {
	return Book{
		BookID:      in.BookID,
		Title:       in.Title,
		Authors:     in.Authors,
		Description: in.Description,
		Image:       in.Image,
		Link:        in.Link,
	}
}

// ListQuery pages through the catalog ordered by title then id.
type ListQuery struct {
	Limit int
	After CursorData
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	MaxSearchResults = 100
)

const (
	noDescription = "no description"
	noImage       = "no image"
	noLink        = "no link"
)

// withFallbacks fills blank optional fields for display. Stored data is not touched.
func withFallbacks(b Book) Book {
	if b.Description == "" {
		b.Description = noDescription
	}
	if b.Image == "" {
		b.Image = noImage
	}
	if b.Link == "" {
		b.Link = noLink
	}
	if b.Authors == nil {
		b.Authors = []string{}
	}
	return b
}
