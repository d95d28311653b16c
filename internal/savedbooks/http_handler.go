package savedbooks

import (
	"errors"
	"log/slog"
	"net/http"

	"bookshelf/internal/book"
	"bookshelf/internal/httpx"
	"bookshelf/internal/user"
)

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// Add handles POST /me/books
// @Summary Save a book to the current user's list
// @Tags me
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body book.Input true "Book to save"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me/books [post]
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	var req book.Input
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req = req.Normalize()
	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	u, err := h.service.Add(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, r, "save book failed", err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

// Remove handles DELETE /me/books/{bookId}
// @Summary Remove a book from the current user's list
// @Tags me
// @Produce json
// @Security Bearer
// @Param bookId path string true "Upstream volume id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me/books/{bookId} [delete]
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	u, err := h.service.Remove(r.Context(), userID, r.PathValue("bookId"))
	if err != nil {
		h.writeError(w, r, "remove book failed", err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, user.ErrNotFound):
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
	case errors.Is(err, book.ErrInvalidInput):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", nil)
	default:
		h.logger.ErrorContext(r.Context(), msg, "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
