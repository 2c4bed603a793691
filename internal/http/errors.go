package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
)

// WriteServiceError mapea los sentinels del dominio al envelope HTTP:
//
//	ErrConflict     → 409
//	ErrNotFound     → 404
//	ErrForbidden    → 404 (colapsado: no revelar existencia a no-dueños)
//	ErrInvalidInput → 400
//	ErrUnauthorized → 401
//	resto           → 500 con mensaje genérico
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrConflict):
		WriteError(w, http.StatusConflict, safeMessage(err, repository.ErrConflict, "resource already exists"))
	case errors.Is(err, repository.ErrNotFound):
		WriteError(w, http.StatusNotFound, safeMessage(err, repository.ErrNotFound, "resource not found"))
	case errors.Is(err, repository.ErrForbidden):
		// mismo mensaje que un 404 real
		WriteError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, repository.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, safeMessage(err, repository.ErrInvalidInput, "invalid input"))
	case errors.Is(err, repository.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "invalid credentials or MFA code")
	default:
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// safeMessage recorta el sufijo ": <sentinel>" del error envuelto; lo que
// queda es el detalle armado en el service/store, pensado para el cliente.
func safeMessage(err error, sentinel error, fallback string) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" || msg == err.Error() {
		return fallback
	}
	return msg
}
