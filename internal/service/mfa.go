package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
	"github.com/dropDatabas3/bookjohn/internal/observability/logger"
	tokens "github.com/dropDatabas3/bookjohn/internal/security/token"
	"github.com/dropDatabas3/bookjohn/internal/security/totp"
)

const (
	// BackupCodeCount es la cantidad de códigos por set.
	BackupCodeCount = 10
	// BackupCodeDigits es el largo de cada código (distinto de los 6
	// dígitos TOTP: el login los distingue por largo).
	BackupCodeDigits = 8
)

// Enrollment es el resultado del alta de un dispositivo TOTP. Es el ÚNICO
// lugar donde el secreto y los backup codes viajan en claro: los listados
// posteriores nunca los exponen.
type Enrollment struct {
	Device      *repository.MFADevice
	Secret      string
	OTPAuthURL  string
	BackupCodes []string
}

// MFAStatus resume el estado MFA de un usuario.
type MFAStatus struct {
	Enabled         bool
	TotalDevices    int
	ActiveDevices   int
	VerifiedDevices int
}

// MFAService implementa el ciclo de vida de dispositivos de enrolamiento:
// setup → verify → activate/deactivate → delete. Después de cada mutación
// re-aplica el invariante: mfaEnabled vale true solo si el usuario tiene
// al menos un dispositivo TOTP verificado y activo.
type MFAService struct {
	devices repository.MFARepository
	users   repository.UserRepository

	issuer string // issuer del otpauth:// URL
	window int    // tolerancia +/- time-steps

	now func() time.Time
}

// NewMFAService crea el servicio.
func NewMFAService(devices repository.MFARepository, users repository.UserRepository, issuer string, window int) *MFAService {
	if window <= 0 {
		window = 1
	}
	return &MFAService{
		devices: devices,
		users:   users,
		issuer:  issuer,
		window:  window,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Setup enrola un dispositivo TOTP: secreto random, diez backup codes
// single-use (persistidos solo como digests), dispositivo no verificado y
// activo.
func (s *MFAService) Setup(ctx context.Context, userID int64, deviceName string) (*Enrollment, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(deviceName) == "" {
		deviceName = "Authenticator App"
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, err
	}
	codes, err := tokens.GenerateBackupCodes(BackupCodeCount, BackupCodeDigits)
	if err != nil {
		return nil, err
	}
	hashes := make([]string, len(codes))
	for i, c := range codes {
		hashes[i] = tokens.SHA256Base64URL(c)
	}

	dev, err := s.devices.Create(ctx, repository.CreateDeviceInput{
		UserID:     userID,
		Name:       deviceName,
		Type:       repository.DeviceTypeTOTP,
		Secret:     secret,
		CodeHashes: hashes,
	})
	if err != nil {
		return nil, err
	}

	logger.From(ctx).Info("mfa device enrolled", logger.UserID(userID), logger.DeviceID(dev.ID))
	return &Enrollment{
		Device:      dev,
		Secret:      secret,
		OTPAuthURL:  totp.OTPAuthURL(s.issuer, user.Email, secret),
		BackupCodes: codes,
	}, nil
}

// Verify chequea un código TOTP real (RFC 6238, ventana +/- window) contra
// el dispositivo, con ownership check. En éxito marca verificado, estampa
// último uso y re-aplica el flag MFA del dueño. Código inválido da
// ErrInvalidInput: el caller ya está autenticado, no es un fallo de
// credenciales.
func (s *MFAService) Verify(ctx context.Context, deviceID, userID int64, code string) error {
	dev, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if dev.UserID != userID {
		return fmt.Errorf("device %d: %w", deviceID, repository.ErrForbidden)
	}
	if dev.Type != repository.DeviceTypeTOTP {
		return fmt.Errorf("device %d is not TOTP: %w", deviceID, repository.ErrInvalidInput)
	}
	ok, counter := totp.Verify(dev.Secret, code, s.now(), s.window, dev.LastCounter)
	if !ok {
		return fmt.Errorf("invalid totp code: %w", repository.ErrInvalidInput)
	}
	if err := s.devices.MarkVerified(ctx, deviceID, counter); err != nil {
		return err
	}
	logger.From(ctx).Info("mfa device verified", logger.UserID(dev.UserID), logger.DeviceID(deviceID))
	return s.applyMFAFlag(ctx, dev.UserID)
}

// VerifyBackupCode consume un código de respaldo del usuario: check-and-
// remove atómico, exactamente un caller gana por código.
func (s *MFAService) VerifyBackupCode(ctx context.Context, userID int64, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if len(code) != BackupCodeDigits {
		return false, nil
	}
	used, err := s.devices.ConsumeBackupCode(ctx, userID, tokens.SHA256Base64URL(code))
	if err != nil {
		return false, err
	}
	if used {
		logger.From(ctx).Info("backup code consumed", logger.UserID(userID))
	}
	return used, nil
}

// Devices lista los dispositivos del usuario en orden de ID ascendente,
// con el secreto blanqueado: solo el enrolamiento lo expone.
func (s *MFAService) Devices(ctx context.Context, userID int64) ([]repository.MFADevice, error) {
	devs, err := s.devices.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range devs {
		devs[i].Secret = ""
	}
	return devs, nil
}

// DeleteDevice elimina con ownership check y re-aplica el flag MFA.
func (s *MFAService) DeleteDevice(ctx context.Context, deviceID, userID int64) error {
	if err := s.devices.Delete(ctx, deviceID, userID); err != nil {
		return err
	}
	logger.From(ctx).Info("mfa device deleted", logger.UserID(userID), logger.DeviceID(deviceID))
	return s.applyMFAFlag(ctx, userID)
}

// SetDeviceActive flipea el flag active con ownership check: un
// dispositivo inexistente da ErrNotFound y uno ajeno ErrForbidden, nunca
// un no-op silencioso. Re-aplica el flag MFA: desactivar el último
// dispositivo verificado deshabilita MFA.
func (s *MFAService) SetDeviceActive(ctx context.Context, deviceID, userID int64, active bool) error {
	if err := s.devices.SetActive(ctx, deviceID, userID, active); err != nil {
		return err
	}
	return s.applyMFAFlag(ctx, userID)
}

// RegenerateBackupCodes reemplaza el set completo por diez códigos nuevos,
// invalidando los anteriores. Retorna los nuevos en claro, una sola vez.
func (s *MFAService) RegenerateBackupCodes(ctx context.Context, userID, deviceID int64) ([]string, error) {
	codes, err := tokens.GenerateBackupCodes(BackupCodeCount, BackupCodeDigits)
	if err != nil {
		return nil, err
	}
	hashes := make([]string, len(codes))
	for i, c := range codes {
		hashes[i] = tokens.SHA256Base64URL(c)
	}
	if err := s.devices.ReplaceBackupCodes(ctx, deviceID, userID, hashes); err != nil {
		return nil, err
	}
	logger.From(ctx).Info("backup codes regenerated", logger.UserID(userID), logger.DeviceID(deviceID))
	return codes, nil
}

// Status resume el estado MFA del usuario.
func (s *MFAService) Status(ctx context.Context, userID int64) (*MFAStatus, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	devs, err := s.devices.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := &MFAStatus{Enabled: user.MFAEnabled, TotalDevices: len(devs)}
	for _, d := range devs {
		if d.Active {
			st.ActiveDevices++
		}
		if d.Verified {
			st.VerifiedDevices++
		}
	}
	return st, nil
}

// applyMFAFlag re-aplica el invariante: mfaEnabled vale true solo si
// existe al menos un dispositivo TOTP verificado y activo y false en
// cualquier otro caso. La política es una sola y se
// aplica tras cada mutación; un usuario nunca queda con mfaEnabled=true
// y cero dispositivos usables.
func (s *MFAService) applyMFAFlag(ctx context.Context, userID int64) error {
	devs, err := s.devices.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	enabled := false
	secret := ""
	for _, d := range devs {
		if d.Type == repository.DeviceTypeTOTP && d.Verified && d.Active {
			enabled = true
			secret = d.Secret
			break
		}
	}
	return s.users.SetMFA(ctx, userID, enabled, secret)
}
