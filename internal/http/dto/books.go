package dto

import (
	"time"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
)

// BookRequest sirve tanto para crear como para actualizar un libro.
type BookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationYear int    `json:"publicationYear"`
	Genre           string `json:"genre"`
	Description     string `json:"description"`
}

// BookResponse es la vista pública de un libro.
type BookResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	PublicationYear int       `json:"publicationYear,omitempty"`
	Genre           string    `json:"genre,omitempty"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ToBookResponse proyecta el modelo de dominio.
func ToBookResponse(b *repository.Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Genre:           b.Genre,
		Description:     b.Description,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// ToBookResponses proyecta una lista completa.
func ToBookResponses(books []repository.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, ToBookResponse(&books[i]))
	}
	return out
}

// ToBookInput convierte el request al input del dominio.
func (r BookRequest) ToBookInput() repository.CreateBookInput {
	return repository.CreateBookInput{
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		PublicationYear: r.PublicationYear,
		Genre:           r.Genre,
		Description:     r.Description,
	}
}
