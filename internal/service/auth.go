package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/bookjohn/internal/cache"
	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
	"github.com/dropDatabas3/bookjohn/internal/observability/logger"
	"github.com/dropDatabas3/bookjohn/internal/security/password"
	tokens "github.com/dropDatabas3/bookjohn/internal/security/token"
	"github.com/dropDatabas3/bookjohn/internal/security/totp"
)

// errBadCredentials es el único error que Authenticate deja salir: qué
// paso falló (usuario inexistente, password malo, MFA malo) no se filtra
// al borde para no permitir enumeración de usuarios.
var errBadCredentials = fmt.Errorf("invalid credentials or MFA code: %w", repository.ErrUnauthorized)

// AuthService compone el directorio de usuarios y el registro MFA para
// decidir logins, y maneja los tokens one-shot de verificación de email y
// reset de password.
type AuthService struct {
	users   repository.UserRepository
	devices repository.MFARepository
	mfa     *MFAService

	tokenCache cache.Cache
	verifyTTL  time.Duration
	resetTTL   time.Duration

	window int
	now    func() time.Time
}

// NewAuthService crea el orquestador.
func NewAuthService(users repository.UserRepository, devices repository.MFARepository, mfa *MFAService, tokenCache cache.Cache, verifyTTL, resetTTL time.Duration, window int) *AuthService {
	if window <= 0 {
		window = 1
	}
	return &AuthService{
		users:      users,
		devices:    devices,
		mfa:        mfa,
		tokenCache: tokenCache,
		verifyTTL:  verifyTTL,
		resetTTL:   resetTTL,
		window:     window,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate decide un intento de login:
//  1. resuelve por username-o-email,
//  2. verifica el password (argon2id, comparación en tiempo constante),
//  3. sin MFA habilitado: éxito y estampa último login,
//  4. con MFA: exige código; 8 dígitos va por backup code, si no prueba
//     TOTP contra cada dispositivo activo+verificado en orden de ID
//     ascendente (orden determinístico).
//
// Todo fallo colapsa a ErrUnauthorized sin distinguir el paso.
func (s *AuthService) Authenticate(ctx context.Context, usernameOrEmail, pass, mfaCode string) (*repository.User, error) {
	log := logger.From(ctx)

	user, err := s.users.GetByUsernameOrEmail(ctx, strings.TrimSpace(usernameOrEmail))
	if err != nil {
		return nil, errBadCredentials
	}
	if !user.Active {
		log.Warn("login attempt on inactive user", logger.UserID(user.ID))
		return nil, errBadCredentials
	}
	if !password.Verify(pass, user.PasswordHash) {
		log.Warn("password mismatch", logger.UserID(user.ID))
		return nil, errBadCredentials
	}

	if !user.MFAEnabled {
		return s.succeed(ctx, user.ID)
	}

	mfaCode = strings.TrimSpace(mfaCode)
	if mfaCode == "" {
		log.Warn("mfa code required but missing", logger.UserID(user.ID))
		return nil, errBadCredentials
	}

	if len(mfaCode) == BackupCodeDigits {
		ok, err := s.mfa.VerifyBackupCode(ctx, user.ID, mfaCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errBadCredentials
		}
		return s.succeed(ctx, user.ID)
	}

	devs, err := s.devices.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, d := range devs {
		if d.Type != repository.DeviceTypeTOTP || !d.Active || !d.Verified {
			continue
		}
		if ok, counter := totp.Verify(d.Secret, mfaCode, now, s.window, d.LastCounter); ok {
			if err := s.devices.TouchUsed(ctx, d.ID, counter); err != nil {
				return nil, err
			}
			return s.succeed(ctx, user.ID)
		}
	}
	log.Warn("mfa code rejected", logger.UserID(user.ID))
	return nil, errBadCredentials
}

func (s *AuthService) succeed(ctx context.Context, userID int64) (*repository.User, error) {
	if err := s.users.UpdateLastLogin(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// ─── Email verification ───

// StartEmailVerification emite un token one-shot con TTL para el usuario.
// Sin SMTP en este servicio: el token vuelve al caller (flujo dev).
func (s *AuthService) StartEmailVerification(ctx context.Context, userID int64) (string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return "", err
	}
	tok, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return "", err
	}
	s.tokenCache.Set("verify:"+tokens.SHA256Base64URL(tok), []byte(strconv.FormatInt(userID, 10)), s.verifyTTL)
	return tok, nil
}

// ConfirmEmailVerification consume el token (one-shot) y marca el email
// como verificado. Token desconocido, vencido o de otro usuario da
// ErrInvalidInput.
func (s *AuthService) ConfirmEmailVerification(ctx context.Context, userID int64, token string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	b, ok := s.tokenCache.Take("verify:" + tokens.SHA256Base64URL(token))
	if !ok || string(b) != strconv.FormatInt(userID, 10) {
		return fmt.Errorf("invalid verification token: %w", repository.ErrInvalidInput)
	}
	if err := s.users.SetEmailVerified(ctx, userID, true); err != nil {
		return err
	}
	logger.From(ctx).Info("email verified", logger.UserID(userID))
	return nil
}

// ─── Password reset ───

// StartPasswordReset emite un token one-shot para el dueño del email.
// Retorna ErrNotFound si el email no existe; este endpoint no oculta la
// existencia de cuentas.
func (s *AuthService) StartPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	tok, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return "", err
	}
	s.tokenCache.Set("reset:"+tokens.SHA256Base64URL(tok), []byte(strconv.FormatInt(user.ID, 10)), s.resetTTL)
	logger.From(ctx).Info("password reset started", logger.UserID(user.ID))
	return tok, nil
}

// ConfirmPasswordReset consume el token y reemplaza el password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", repository.ErrInvalidInput)
	}
	b, ok := s.tokenCache.Take("reset:" + tokens.SHA256Base64URL(token))
	if !ok {
		return fmt.Errorf("invalid reset token: %w", repository.ErrInvalidInput)
	}
	userID, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid reset token: %w", repository.ErrInvalidInput)
	}
	hash, err := password.Hash(password.Default, newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}
	logger.From(ctx).Info("password reset confirmed", logger.UserID(userID))
	return nil
}
