package user

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookshelf/internal/book"
	"bookshelf/internal/httpx"
	"bookshelf/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *MockRepository) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	return NewHTTPHandler(NewService(repo), slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func TestHTTPHandler_GetCurrentUser(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		h, _ := newTestHandler(t)
		w := httptest.NewRecorder()
		h.GetCurrentUser(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
		assert.Equal(t, "UNAUTHORIZED", res.Error.Code)
	})

	t.Run("authenticated hides password hash", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByID(gomock.Any(), "u-1").Return(User{
			ID: "u-1", Username: "ada", Email: "ada@example.com", PasswordHash: "secret-hash",
			SavedBooks: []book.Book{{BookID: "b1", Title: "Dune", Authors: []string{}}},
		}, nil)

		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r = r.WithContext(httpx.ContextWithIdentity(r.Context(), httpx.Identity{UserID: "u-1", Username: "ada"}))
		w := httptest.NewRecorder()
		h.GetCurrentUser(w, r)

		res := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, res.Code)
		assert.NotContains(t, string(res.Data), "secret-hash")

		var u User
		require.NoError(t, json.Unmarshal(res.Data, &u))
		assert.Equal(t, "ada", u.Username)
		require.Len(t, u.SavedBooks, 1)
		assert.Equal(t, "b1", u.SavedBooks[0].BookID)
	})

	t.Run("deleted account is unauthorized", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByID(gomock.Any(), "gone").Return(User{}, ErrNotFound)

		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r = r.WithContext(httpx.ContextWithIdentity(r.Context(), httpx.Identity{UserID: "gone"}))
		w := httptest.NewRecorder()
		h.GetCurrentUser(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByID(gomock.Any(), "u-1").Return(User{}, context.DeadlineExceeded)

		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r = r.WithContext(httpx.ContextWithIdentity(r.Context(), httpx.Identity{UserID: "u-1"}))
		w := httptest.NewRecorder()
		h.GetCurrentUser(w, r)

		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusInternalServerError, res.Code)
		assert.NotContains(t, res.Error.Message, "deadline")
	})
}

func TestHTTPHandler_GetByUsername(t *testing.T) {
	h, repo := newTestHandler(t)

	repo.EXPECT().GetByUsername(gomock.Any(), "nobody").Return(User{}, ErrNotFound)
	r := httptest.NewRequest(http.MethodGet, "/users/nobody", nil)
	r.SetPathValue("username", "nobody")
	w := httptest.NewRecorder()
	h.GetByUsername(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)

	repo.EXPECT().GetByUsername(gomock.Any(), "ada").Return(User{ID: "u-1", Username: "ada"}, nil)
	r = httptest.NewRequest(http.MethodGet, "/users/ada", nil)
	r.SetPathValue("username", "ada")
	w = httptest.NewRecorder()
	h.GetByUsername(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPHandler_List(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.EXPECT().List(gomock.Any()).Return([]User{{ID: "u-1"}, {ID: "u-2"}}, nil)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	res := testutil.RecordHTTPResponse(w)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, float64(2), res.Meta["count"])
}
