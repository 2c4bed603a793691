package middlewares

import (
	"encoding/json"
	"net/http"
)

// writeError escribe el envelope estándar de error. Duplica lo mínimo del
// paquete http padre para no crear un ciclo de imports.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    any    `json:"data"`
	}{Success: false, Message: message})
}
