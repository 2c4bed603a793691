package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
)

// BookService implementa el catálogo de libros.
type BookService struct {
	books repository.BookRepository
}

// NewBookService crea el servicio.
func NewBookService(books repository.BookRepository) *BookService {
	return &BookService{books: books}
}

func validateBook(in repository.CreateBookInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required: %w", repository.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Author) == "" {
		return fmt.Errorf("author is required: %w", repository.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ISBN) == "" {
		return fmt.Errorf("isbn is required: %w", repository.ErrInvalidInput)
	}
	if in.PublicationYear <= 0 {
		return fmt.Errorf("publication year must be positive: %w", repository.ErrInvalidInput)
	}
	return nil
}

// List aplica los filtros opcionales por autor y género (substring,
// case-insensitive). Con ambos filtros presentes se intersectan.
func (s *BookService) List(ctx context.Context, author, genre string) ([]repository.Book, error) {
	switch {
	case author != "" && genre != "":
		byAuthor, err := s.books.ListByAuthor(ctx, author)
		if err != nil {
			return nil, err
		}
		needle := strings.ToLower(genre)
		out := byAuthor[:0]
		for _, b := range byAuthor {
			if b.Genre != "" && strings.Contains(strings.ToLower(b.Genre), needle) {
				out = append(out, b)
			}
		}
		return out, nil
	case author != "":
		return s.books.ListByAuthor(ctx, author)
	case genre != "":
		return s.books.ListByGenre(ctx, genre)
	default:
		return s.books.List(ctx)
	}
}

// Get retorna ErrNotFound si no existe.
func (s *BookService) Get(ctx context.Context, id int64) (*repository.Book, error) {
	return s.books.GetByID(ctx, id)
}

// Create valida y crea. ISBN duplicado da ErrConflict.
func (s *BookService) Create(ctx context.Context, in repository.CreateBookInput) (*repository.Book, error) {
	if err := validateBook(in); err != nil {
		return nil, err
	}
	return s.books.Create(ctx, in)
}

// Update valida y reemplaza campos mutables preservando ID y CreatedAt.
func (s *BookService) Update(ctx context.Context, id int64, in repository.UpdateBookInput) (*repository.Book, error) {
	if err := validateBook(in); err != nil {
		return nil, err
	}
	return s.books.Update(ctx, id, in)
}

// Delete retorna false si el ID no existía.
func (s *BookService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.books.Delete(ctx, id)
}

// Count retorna el total de libros.
func (s *BookService) Count(ctx context.Context) (int64, error) {
	return s.books.Count(ctx)
}
