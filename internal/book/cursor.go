package book

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// CursorData is the (title, book_id) keyset position of the last row of a page.
// Rows sort by title first, so the id alone cannot resume a listing.
type CursorData struct {
	AfterTitle string
	AfterID    string
}

// EncodeCursor packs the keyset as an unpadded URL-safe base64 JSON pair.
// The zero position encodes to "", which means the first page.
func EncodeCursor(data CursorData) string {
	if data.AfterID == "" {
		return ""
	}
	raw, err := json.Marshal([2]string{data.AfterTitle, data.AfterID})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses EncodeCursor. Anything it did not produce yields
// ErrInvalidCursor.
func DecodeCursor(cursor string) (CursorData, error) {
	if cursor == "" {
		return CursorData{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return CursorData{}, ErrInvalidCursor
	}
	var pair [2]string
	if err := json.Unmarshal(raw, &pair); err != nil || pair[1] == "" {
		return CursorData{}, ErrInvalidCursor
	}
	return CursorData{AfterTitle: pair[0], AfterID: pair[1]}, nil
}
