package controllers

import (
	"net/http"

	api "github.com/dropDatabas3/bookjohn/internal/http"
	"github.com/dropDatabas3/bookjohn/internal/http/dto"
	"github.com/dropDatabas3/bookjohn/internal/service"
)

// BooksController maneja el catálogo de libros.
type BooksController struct {
	books *service.BookService
}

// NewBooksController crea el controller.
func NewBooksController(books *service.BookService) *BooksController {
	return &BooksController{books: books}
}

// List maneja GET /api/books con filtros ?author= y ?genre= opcionales.
func (c *BooksController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	books, err := c.books.List(r.Context(), q.Get("author"), q.Get("genre"))
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "Books retrieved successfully", dto.ToBookResponses(books))
}

// Get maneja GET /api/books/{id}
func (c *BooksController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	book, err := c.books.Get(r.Context(), id)
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "Book retrieved successfully", dto.ToBookResponse(book))
}

// Create maneja POST /api/books
func (c *BooksController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.BookRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}
	book, err := c.books.Create(r.Context(), req.ToBookInput())
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusCreated, "Book created successfully", dto.ToBookResponse(book))
}

// Update maneja PUT /api/books/{id}
func (c *BooksController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.BookRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}
	book, err := c.books.Update(r.Context(), id, req.ToBookInput())
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "Book updated successfully", dto.ToBookResponse(book))
}

// Delete maneja DELETE /api/books/{id}
func (c *BooksController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := c.books.Delete(r.Context(), id)
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	if !deleted {
		api.WriteError(w, http.StatusNotFound, "book not found")
		return
	}
	api.WriteSuccess(w, http.StatusOK, "Book deleted successfully", nil)
}

// Stats maneja GET /api/books/stats
func (c *BooksController) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := c.books.Count(r.Context())
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "Book stats retrieved successfully", map[string]int64{"totalBooks": total})
}
