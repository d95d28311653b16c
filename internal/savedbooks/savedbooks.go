// Package savedbooks maintains each user's set of saved catalog books.
package savedbooks

import "errors"

// ErrUnauthorized is returned when no authenticated user is bound to the call.
var ErrUnauthorized = errors.New("authentication required")
