// Package controllers traduce HTTP al dominio: decodifica requests,
// delega en los services y proyecta las respuestas con el envelope
// estándar. Toda la lógica de negocio vive en internal/service.
package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	api "github.com/dropDatabas3/bookjohn/internal/http"
)

// pathID extrae un ID numérico de la ruta. Devuelve 0 y escribe 400 si el
// parámetro no es un entero positivo.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		api.WriteError(w, http.StatusBadRequest, "invalid "+name+" path parameter")
		return 0, false
	}
	return id, true
}
