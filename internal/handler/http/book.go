package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkocak/librarian/internal/repository"
	"github.com/dkocak/librarian/internal/service"
	"github.com/dkocak/librarian/pkg/httputil"
)

// BookHandler handles HTTP requests for book endpoints.
type BookHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewBookHandler creates a new book HTTP handler.
func NewBookHandler(svc *service.CatalogService, logger *slog.Logger) *BookHandler {
	return &BookHandler{service: svc, logger: logger}
}

// CreateBookRequest is the JSON request body for creating a book.
type CreateBookRequest struct {
	Title         string  `json:"title"`
	ISBN          string  `json:"isbn"`
	Description   string  `json:"description"`
	AuthorID      *string `json:"author_id"`
	CategoryID    *string `json:"category_id"`
	PublishedYear int     `json:"published_year"`
}

// UpdateBookRequest is the JSON request body for updating a book. Absent
// fields are left unchanged.
type UpdateBookRequest struct {
	Title         *string `json:"title"`
	ISBN          *string `json:"isbn"`
	Description   *string `json:"description"`
	AuthorID      *string `json:"author_id"`
	CategoryID    *string `json:"category_id"`
	PublishedYear *int    `json:"published_year"`
}

// Create handles POST /api/v1/books
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	book, err := h.service.CreateBook(r.Context(), service.CreateBookInput{
		Title:         req.Title,
		ISBN:          req.ISBN,
		Description:   req.Description,
		AuthorID:      req.AuthorID,
		CategoryID:    req.CategoryID,
		PublishedYear: req.PublishedYear,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: book})
}

// Get handles GET /api/v1/books/{id}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	book, err := h.service.GetBook(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// List handles GET /api/v1/books
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repository.BookFilter

	q := r.URL.Query()
	if v := q.Get("author_id"); v != "" {
		filter.AuthorID = &v
	}
	if v := q.Get("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}

	books, err := h.service.ListBooks(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: books})
}

// Update handles PUT /api/v1/books/{id}
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	book, err := h.service.UpdateBook(r.Context(), id.String(), service.UpdateBookInput{
		Title:         req.Title,
		ISBN:          req.ISBN,
		Description:   req.Description,
		AuthorID:      req.AuthorID,
		CategoryID:    req.CategoryID,
		PublishedYear: req.PublishedYear,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// Delete handles DELETE /api/v1/books/{id}
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteBook(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}
