package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/bookjohn/internal/jwt"
	"github.com/dropDatabas3/bookjohn/internal/observability/logger"
)

// WithAuth exige un access token Bearer válido y deja los claims en el
// contexto. Sin token o con token inválido corta con 401.
func WithAuth(issuer *jwt.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(ah, prefix) {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := issuer.Parse(strings.TrimSpace(ah[len(prefix):]))
			if err != nil {
				logger.From(r.Context()).Warn("token rejected", logger.Err(err))
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(setClaims(r.Context(), claims)))
		})
	}
}
