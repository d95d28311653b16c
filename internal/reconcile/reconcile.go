// Package reconcile merges book lists received at different times into one
// list without duplicates.
package reconcile

import "bookshelf/internal/book"

// Merge returns existing followed by incoming, keeping only the first
// occurrence of each book id. Nil inputs are treated as empty and the result
// never shares a backing array with either input.
func Merge(existing, incoming []book.Book) []book.Book {
	out := make([]book.Book, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, list := range [2][]book.Book{existing, incoming} {
		for _, b := range list {
			if _, dup := seen[b.BookID]; dup {
				continue
			}
			seen[b.BookID] = struct{}{}
			out = append(out, b)
		}
	}
	return out
}

// Remove returns list without the book with the given id.
func Remove(list []book.Book, bookID string) []book.Book {
	out := make([]book.Book, 0, len(list))
	for _, b := range list {
		if b.BookID != bookID {
			out = append(out, b)
		}
	}
	return out
}
