// Package app hace el wiring del servicio: stores → services →
// controllers → router. Todo el estado vive en memoria; no hay conexiones
// externas que abrir ni cerrar.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/bookjohn/internal/bootstrap"
	"github.com/dropDatabas3/bookjohn/internal/cache"
	cachemem "github.com/dropDatabas3/bookjohn/internal/cache/memory"
	"github.com/dropDatabas3/bookjohn/internal/config"
	api "github.com/dropDatabas3/bookjohn/internal/http"
	"github.com/dropDatabas3/bookjohn/internal/http/controllers"
	"github.com/dropDatabas3/bookjohn/internal/http/router"
	jwtx "github.com/dropDatabas3/bookjohn/internal/jwt"
	"github.com/dropDatabas3/bookjohn/internal/observability/logger"
	"github.com/dropDatabas3/bookjohn/internal/rate"
	tokens "github.com/dropDatabas3/bookjohn/internal/security/token"
	"github.com/dropDatabas3/bookjohn/internal/service"
	"github.com/dropDatabas3/bookjohn/internal/store/memory"
)

// App agrupa las piezas armadas del servicio.
type App struct {
	Handler http.Handler

	Users   *service.UserService
	Books   *service.BookService
	MFA     *service.MFAService
	Auth    *service.AuthService
	Seeded  bool
}

// New arma la aplicación completa a partir de la config.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	userStore := memory.NewUserStore()
	bookStore := memory.NewBookStore()
	mfaStore := memory.NewMFAStore()

	userSvc := service.NewUserService(userStore, mfaStore)
	bookSvc := service.NewBookService(bookStore)
	mfaSvc := service.NewMFAService(mfaStore, userStore, cfg.MFA.Issuer, cfg.MFA.Window)

	tokenCache := cachemem.New(cfg.VerifyTokenTTL())
	authSvc := service.NewAuthService(userStore, mfaStore, mfaSvc, tokenCache,
		cfg.VerifyTokenTTL(), cfg.ResetTokenTTL(), cfg.MFA.Window)

	secret := cfg.JWT.Secret
	if secret == "" {
		// sin secreto configurado: uno efímero, los tokens mueren con el
		// proceso (igual que el estado en memoria)
		s, err := tokens.GenerateOpaqueToken(32)
		if err != nil {
			return nil, err
		}
		secret = s
		logger.L().Warn("JWT_SECRET not set, using an ephemeral secret")
	}
	issuer := jwtx.NewIssuer(cfg.JWT.Issuer, secret, cfg.AccessTTL())

	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		limiter = rate.NewMemoryLimiter(newRateCache(), "login", cfg.Rate.Login.Limit, cfg.LoginRateWindow())
	}

	metricsHandler, err := api.RegisterMetrics(nil)
	if err != nil {
		return nil, err
	}

	handler := router.New(router.Deps{
		Auth: controllers.NewAuthController(userSvc, authSvc, issuer, limiter,
			int64(cfg.VerifyTokenTTL().Seconds()), int64(cfg.ResetTokenTTL().Seconds())),
		Users:       controllers.NewUsersController(userSvc),
		Books:       controllers.NewBooksController(bookSvc),
		MFA:         controllers.NewMFAController(mfaSvc),
		Issuer:      issuer,
		Metrics:     metricsHandler,
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
	})

	app := &App{
		Handler: handler,
		Users:   userSvc,
		Books:   bookSvc,
		MFA:     mfaSvc,
		Auth:    authSvc,
	}

	if cfg.Seed.Enabled {
		if err := bootstrap.Seed(ctx, userSvc, bookSvc); err != nil {
			return nil, err
		}
		app.Seeded = true
	}

	return app, nil
}

func newRateCache() cache.Cache {
	return cachemem.New(5 * time.Minute)
}
