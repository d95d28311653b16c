package book

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bookshelf/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// List handles GET /books
// @Summary List catalog books
// @Tags books
// @Produce json
// @Param limit query int false "Page size (max 200)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} httpx.SuccessResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	after, err := DecodeCursor(query.Get("cursor"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid cursor", nil)
		return
	}
	limit, _ := strconv.Atoi(query.Get("limit"))

	books, next, err := h.service.List(r.Context(), ListQuery{Limit: limit, After: after})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list books failed", "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	meta := map[string]any{"count": len(books)}
	if next != "" {
		meta["next_cursor"] = next
	}
	httpx.JSONSuccess(w, r, books, meta)
}

// Search handles GET /books/search?q=
// @Summary Search the catalog by title or author
// @Tags books
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input",
			[]httpx.ErrorDetail{{Field: "q", Message: "q is required"}})
		return
	}

	books, truncated, err := h.service.Search(r.Context(), q)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "search books failed", "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books), "truncated": truncated})
}

// Lookup handles GET /books/lookup?q=
// @Summary Search the upstream Google Books catalog
// @Tags books
// @Produce json
// @Param q query string true "Search text"
// @Param limit query int false "Max results (max 40)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /books/lookup [get]
func (h *HTTPHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input",
			[]httpx.ErrorDetail{{Field: "q", Message: "q is required"}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	books, err := h.service.Lookup(r.Context(), q, limit)
	if err != nil {
		h.logger.WarnContext(r.Context(), "upstream search failed", "error", err)
		httpx.JSONUpstreamError(w, r, books)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books)})
}

// Get handles GET /books/{bookId}
// @Summary Get a catalog book
// @Tags books
// @Produce json
// @Param bookId path string true "Upstream volume id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{bookId} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("bookId")

	b, err := h.service.Find(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		h.logger.ErrorContext(r.Context(), "get book failed", "book_id", bookID, "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}
