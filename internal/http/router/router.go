// Package router define las rutas HTTP del servicio sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	api "github.com/dropDatabas3/bookjohn/internal/http"
	ctrl "github.com/dropDatabas3/bookjohn/internal/http/controllers"
	mw "github.com/dropDatabas3/bookjohn/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/bookjohn/internal/jwt"
)

// Deps contiene las dependencias del router. Metrics puede ser nil (sin
// endpoint /metrics).
type Deps struct {
	Auth  *ctrl.AuthController
	Users *ctrl.UsersController
	Books *ctrl.BooksController
	MFA   *ctrl.MFAController

	Issuer      *jwtx.Issuer
	Metrics     http.Handler
	CORSOrigins []string
}

// New arma el router completo con el middleware stack global:
// request ID → CORS → métricas → logging → recover, de afuera hacia
// adentro.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithCORS(deps.CORSOrigins))
	r.Use(api.WithMetrics())
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())

	requireAuth := mw.WithAuth(deps.Issuer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteSuccess(w, http.StatusOK, "ok", nil)
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)
		r.Post("/reset-password", deps.Auth.StartPasswordReset)
		r.Post("/reset-password/confirm", deps.Auth.ConfirmPasswordReset)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", deps.Auth.Me)
			r.Post("/verify-email", deps.Auth.StartEmailVerification)
			r.Post("/verify-email/confirm", deps.Auth.ConfirmEmailVerification)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", deps.Users.List)
		r.Post("/", deps.Users.Create)
		r.Get("/stats", deps.Users.Stats)
		r.Get("/{id}", deps.Users.Get)
		r.Put("/{id}", deps.Users.Update)
		r.Delete("/{id}", deps.Users.Delete)
	})

	r.Route("/api/books", func(r chi.Router) {
		r.Get("/", deps.Books.List)
		r.Post("/", deps.Books.Create)
		r.Get("/stats", deps.Books.Stats)
		r.Get("/{id}", deps.Books.Get)
		r.Put("/{id}", deps.Books.Update)
		r.Delete("/{id}", deps.Books.Delete)
	})

	r.Route("/api/mfa", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/setup/totp", deps.MFA.Setup)
		r.Post("/verify", deps.MFA.Verify)
		r.Get("/devices", deps.MFA.Devices)
		r.Delete("/devices/{deviceId}", deps.MFA.Delete)
		r.Put("/devices/{deviceId}/activate", deps.MFA.Activate)
		r.Put("/devices/{deviceId}/deactivate", deps.MFA.Deactivate)
		r.Post("/backup-codes/regenerate", deps.MFA.RegenerateBackupCodes)
		r.Get("/status", deps.MFA.Status)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
