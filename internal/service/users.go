// Package service contiene la lógica de dominio: directorio de usuarios,
// catálogo de libros, registro de dispositivos MFA y el orquestador de
// autenticación. Los controllers HTTP solo validan forma y delegan acá.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
	"github.com/dropDatabas3/bookjohn/internal/observability/logger"
	"github.com/dropDatabas3/bookjohn/internal/security/password"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RegisterUserInput son los datos crudos de un alta de usuario.
// Password viene en claro y se hashea acá; nunca llega al store.
type RegisterUserInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// UserService implementa el directorio de usuarios sobre el repositorio,
// cascadeando la limpieza de dispositivos MFA al borrar.
type UserService struct {
	users repository.UserRepository
	mfa   repository.MFARepository
}

// NewUserService crea el servicio.
func NewUserService(users repository.UserRepository, mfa repository.MFARepository) *UserService {
	return &UserService{users: users, mfa: mfa}
}

func validateRegister(in RegisterUserInput) error {
	if n := len(strings.TrimSpace(in.Username)); n < 3 || n > 50 {
		return fmt.Errorf("username must be between 3 and 50 characters: %w", repository.ErrInvalidInput)
	}
	if !emailRe.MatchString(in.Email) {
		return fmt.Errorf("email should be valid: %w", repository.ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", repository.ErrInvalidInput)
	}
	return nil
}

// Register valida, hashea el password y crea el usuario.
// Retorna ErrConflict si username o email ya existen.
func (s *UserService) Register(ctx context.Context, in RegisterUserInput) (*repository.User, error) {
	if err := validateRegister(in); err != nil {
		return nil, err
	}
	hash, err := password.Hash(password.Default, in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, repository.CreateUserInput{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("user registered", logger.UserID(u.ID))
	return u, nil
}

// Get retorna ErrNotFound si no existe.
func (s *UserService) Get(ctx context.Context, id int64) (*repository.User, error) {
	return s.users.GetByID(ctx, id)
}

// List retorna todos los usuarios.
func (s *UserService) List(ctx context.Context) ([]repository.User, error) {
	return s.users.List(ctx)
}

// Update reemplaza los campos mutables. Colisiones de username/email con
// otro usuario dan ErrConflict.
func (s *UserService) Update(ctx context.Context, id int64, in repository.UpdateUserInput) (*repository.User, error) {
	if n := len(strings.TrimSpace(in.Username)); n < 3 || n > 50 {
		return nil, fmt.Errorf("username must be between 3 and 50 characters: %w", repository.ErrInvalidInput)
	}
	if !emailRe.MatchString(in.Email) {
		return nil, fmt.Errorf("email should be valid: %w", repository.ErrInvalidInput)
	}
	return s.users.Update(ctx, id, in)
}

// Delete elimina el usuario y cascadea el borrado de sus dispositivos MFA
// para no dejar dispositivos huérfanos. Retorna false si el ID no existía.
func (s *UserService) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := s.users.Delete(ctx, id)
	if err != nil || !removed {
		return removed, err
	}
	n, err := s.mfa.DeleteAllForUser(ctx, id)
	if err != nil {
		return true, err
	}
	if n > 0 {
		logger.From(ctx).Info("cascaded mfa device cleanup", logger.UserID(id), logger.Count(n))
	}
	return true, nil
}

// Count retorna el total de usuarios.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}
