package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto de unicidad (username, email, ISBN).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indica credenciales o código MFA inválidos.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indica un fallo de ownership (el dispositivo no pertenece
	// al usuario). En el borde HTTP se colapsa a 404 para no revelar la
	// existencia del recurso; internamente se distingue para poder testearlo.
	ErrForbidden = errors.New("forbidden")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsForbidden verifica si el error es ErrForbidden.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
