// Package bootstrap carga datos de ejemplo al arrancar. Útil para demos y
// para pegarle a la API sin registrar nada antes.
package bootstrap

import (
	"context"
	"errors"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
	"github.com/dropDatabas3/bookjohn/internal/observability/logger"
	"github.com/dropDatabas3/bookjohn/internal/service"
)

// Seed registra un usuario admin y tres libros clásicos. Es idempotente:
// los conflictos por datos ya existentes se ignoran.
func Seed(ctx context.Context, users *service.UserService, books *service.BookService) error {
	log := logger.Named("bootstrap")

	_, err := users.Register(ctx, service.RegisterUserInput{
		Username:  "admin",
		Email:     "admin@bookjohn.dev",
		Password:  "admin12345",
		FirstName: "Admin",
		LastName:  "User",
	})
	if err != nil && !errors.Is(err, repository.ErrConflict) {
		return err
	}

	seedBooks := []repository.CreateBookInput{
		{
			Title:           "The Great Gatsby",
			Author:          "F. Scott Fitzgerald",
			ISBN:            "9780743273565",
			PublicationYear: 1925,
			Genre:           "Classic",
			Description:     "A story of wealth, love and the American Dream",
		},
		{
			Title:           "To Kill a Mockingbird",
			Author:          "Harper Lee",
			ISBN:            "9780061120084",
			PublicationYear: 1960,
			Genre:           "Classic",
			Description:     "A novel about racial injustice in the Deep South",
		},
		{
			Title:           "1984",
			Author:          "George Orwell",
			ISBN:            "9780451524935",
			PublicationYear: 1949,
			Genre:           "Dystopian",
			Description:     "A dystopian novel about totalitarianism",
		},
	}
	for _, in := range seedBooks {
		if _, err := books.Create(ctx, in); err != nil && !errors.Is(err, repository.ErrConflict) {
			return err
		}
	}

	log.Info("seed data loaded", logger.Count(len(seedBooks)))
	return nil
}
