package googlebooks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const volumesJSON = `{
  "totalItems": 3,
  "items": [
    {"id": "zyTCAlFPjgYC", "volumeInfo": {
      "title": "The Google Story",
      "authors": ["David A. Vise", "Mark Malseed"],
      "description": "Inside the company",
      "imageLinks": {"smallThumbnail": "http://img/small", "thumbnail": "http://img/thumb"},
      "infoLink": "http://books.google.com/books?id=zyTCAlFPjgYC"}},
    {"id": "noauthors", "volumeInfo": {"title": "Anonymous", "imageLinks": {"smallThumbnail": "http://img/s2"}}},
    {"id": "untitled", "volumeInfo": {"authors": ["Nobody"]}}
  ]
}`

func newTestClient(srv *httptest.Server, retries int) *Client {
	return NewClient(Options{
		BaseURL:    srv.URL,
		APIKey:     "k",
		UserAgent:  "bookshelf-test",
		RPS:        1000,
		MaxRetries: retries,
		Backoff:    time.Millisecond,
	})
}

func TestClient_Search_MapsVolumes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/v1/volumes", r.URL.Path)
		assert.Equal(t, "google", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		assert.Equal(t, "bookshelf-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(volumesJSON))
	}))
	defer srv.Close()

	books, err := newTestClient(srv, 0).Search(context.Background(), "google", 5)
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "zyTCAlFPjgYC", books[0].BookID)
	assert.Equal(t, []string{"David A. Vise", "Mark Malseed"}, books[0].Authors)
	assert.Equal(t, "http://img/thumb", books[0].Image)
	assert.Equal(t, "http://books.google.com/books?id=zyTCAlFPjgYC", books[0].Link)

	assert.Equal(t, []string{}, books[1].Authors)
	assert.Equal(t, "http://img/s2", books[1].Image)
}

func TestClient_Search_NoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":0}`))
	}))
	defer srv.Close()

	books, err := newTestClient(srv, 0).Search(context.Background(), "zzz", 5)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestClient_Search_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(volumesJSON))
	}))
	defer srv.Close()

	books, err := newTestClient(srv, 2).Search(context.Background(), "google", 5)
	require.NoError(t, err)
	assert.Len(t, books, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Search_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	books, err := newTestClient(srv, 1).Search(context.Background(), "google", 5)
	require.Error(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
	assert.Equal(t, int32(2), calls.Load())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
}

func TestClient_Search_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 3).Search(context.Background(), "google", 5)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Search_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, RPS: 1000, MaxRetries: 5, Backoff: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Search(ctx, "google", 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
