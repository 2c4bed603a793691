package repository

import (
	"context"
	"time"
)

// Book representa una entrada del catálogo.
type Book struct {
	ID              int64
	Title           string
	Author          string
	ISBN            string
	PublicationYear int
	Genre           string
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateBookInput contiene los datos para crear un libro.
type CreateBookInput struct {
	Title           string
	Author          string
	ISBN            string
	PublicationYear int
	Genre           string
	Description     string
}

// UpdateBookInput reemplaza los campos mutables preservando ID y CreatedAt.
type UpdateBookInput = CreateBookInput

// BookRepository define operaciones sobre el catálogo de libros.
// Los filtros son linear scan: a la escala de este sistema la correctness
// manda, no el throughput.
type BookRepository interface {
	// List retorna todos los libros.
	List(ctx context.Context) ([]Book, error)

	// ListByAuthor filtra por substring del autor, case-insensitive.
	ListByAuthor(ctx context.Context, author string) ([]Book, error)

	// ListByGenre filtra por substring del género, case-insensitive.
	// Libros sin género nunca matchean.
	ListByGenre(ctx context.Context, genre string) ([]Book, error)

	// GetByID retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*Book, error)

	// Create crea un libro asignando un ID incremental.
	// Retorna ErrConflict si el ISBN ya existe.
	Create(ctx context.Context, input CreateBookInput) (*Book, error)

	// Update reemplaza campos mutables. Retorna ErrNotFound si el ID no
	// existe y ErrConflict si el nuevo ISBN pertenece a otro libro.
	Update(ctx context.Context, id int64, input UpdateBookInput) (*Book, error)

	// Delete retorna true si algo fue eliminado.
	Delete(ctx context.Context, id int64) (bool, error)

	// ExistsByISBN consulta por ISBN exacto.
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)

	// Count retorna la cantidad total de libros.
	Count(ctx context.Context) (int64, error)
}
