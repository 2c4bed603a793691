package controllers

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	api "github.com/dropDatabas3/bookjohn/internal/http"
	"github.com/dropDatabas3/bookjohn/internal/http/dto"
	"github.com/dropDatabas3/bookjohn/internal/http/middlewares"
	"github.com/dropDatabas3/bookjohn/internal/jwt"
	"github.com/dropDatabas3/bookjohn/internal/observability/logger"
	"github.com/dropDatabas3/bookjohn/internal/rate"
	"github.com/dropDatabas3/bookjohn/internal/service"
)

// AuthController maneja registro, login y los flujos de verificación de
// email y reset de password.
type AuthController struct {
	users   *service.UserService
	auth    *service.AuthService
	issuer  *jwt.Issuer
	limiter rate.Limiter // puede ser nil (rate limiting deshabilitado)

	verifyTTL int64
	resetTTL  int64
}

// NewAuthController crea el controller. limiter nil deshabilita el rate
// limiting de login.
func NewAuthController(users *service.UserService, auth *service.AuthService, issuer *jwt.Issuer, limiter rate.Limiter, verifyTTLSeconds, resetTTLSeconds int64) *AuthController {
	return &AuthController{
		users:     users,
		auth:      auth,
		issuer:    issuer,
		limiter:   limiter,
		verifyTTL: verifyTTLSeconds,
		resetTTL:  resetTTLSeconds,
	}
}

// Register maneja POST /api/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}
	user, err := c.users.Register(r.Context(), service.RegisterUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusCreated, "User registered successfully", dto.ToUserResponse(user))
}

// Login maneja POST /api/auth/login. Rate-limited por IP + identificador
// para frenar fuerza bruta sin bloquear a todo un NAT por un solo usuario.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}

	if c.limiter != nil {
		key := middlewares.ClientIP(r) + ":" + strings.ToLower(strings.TrimSpace(req.UsernameOrEmail))
		res, err := c.limiter.Allow(r.Context(), key)
		if err != nil {
			// el limiter nunca debería impedir operar
			logger.From(r.Context()).Warn("rate limiter error", logger.Err(err))
		} else if !res.Allowed {
			api.CountLogin("rate_limited")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(res.RetryAfter.Seconds()))))
			api.WriteError(w, http.StatusTooManyRequests, "too many login attempts, slow down")
			return
		}
	}

	user, err := c.auth.Authenticate(r.Context(), req.UsernameOrEmail, req.Password, req.Code)
	if err != nil {
		api.CountLogin("unauthorized")
		api.WriteServiceError(w, err)
		return
	}

	token, expiresIn, err := c.issuer.Sign(user.ID, user.Username)
	if err != nil {
		logger.From(r.Context()).Error("token signing failed", logger.Err(err))
		api.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	api.CountLogin("ok")
	api.WriteSuccess(w, http.StatusOK, "Login successful", dto.LoginResponse{
		User:        dto.ToUserResponse(user),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	})
}

// Me maneja GET /api/auth/me (requiere bearer token).
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	user, err := c.users.Get(r.Context(), userID)
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "Profile retrieved successfully", dto.ToUserResponse(user))
}

// StartEmailVerification maneja POST /api/auth/verify-email (requiere
// bearer token). Sin salida SMTP el token one-shot vuelve en la respuesta.
func (c *AuthController) StartEmailVerification(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	token, err := c.auth.StartEmailVerification(r.Context(), userID)
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	api.WriteSuccess(w, http.StatusOK, "Verification token issued", dto.StartVerificationResponse{
		Token:     token,
		ExpiresIn: c.verifyTTL,
	})
}

// ConfirmEmailVerification maneja POST /api/auth/verify-email/confirm
// (requiere bearer token).
func (c *AuthController) ConfirmEmailVerification(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	var req dto.ConfirmEmailRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}
	if err := c.auth.ConfirmEmailVerification(r.Context(), userID, req.Token); err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "Email verified successfully", nil)
}

// StartPasswordReset maneja POST /api/auth/reset-password.
func (c *AuthController) StartPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.StartPasswordResetRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}
	token, err := c.auth.StartPasswordReset(r.Context(), req.Email)
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	api.WriteSuccess(w, http.StatusOK, "Password reset token issued", dto.StartVerificationResponse{
		Token:     token,
		ExpiresIn: c.resetTTL,
	})
}

// ConfirmPasswordReset maneja POST /api/auth/reset-password/confirm.
func (c *AuthController) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmPasswordResetRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}
	if err := c.auth.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "Password reset successfully", nil)
}
