package repository

import (
	"context"
	"time"
)

// DeviceTypeTOTP es el único tipo de dispositivo con semántica real hoy.
const DeviceTypeTOTP = "TOTP"

// MFADevice representa un dispositivo de enrolamiento MFA.
// Secret es el secreto compartido en base32; los handlers solo lo exponen
// en la respuesta de enrolamiento, nunca en listados.
// Los backup codes viven únicamente como digests SHA-256 dentro del store:
// acá solo se ve cuántos quedan.
type MFADevice struct {
	ID              int64
	UserID          int64
	Name            string
	Type            string
	Secret          string
	Verified        bool
	Active          bool
	LastCounter     int64 // último time-step TOTP aceptado (anti-replay)
	BackupCodesLeft int
	CreatedAt       time.Time
	LastUsedAt      *time.Time
}

// CreateDeviceInput contiene los datos para registrar un dispositivo.
// CodeHashes son los digests de los backup codes, ya hasheados por el caller.
type CreateDeviceInput struct {
	UserID     int64
	Name       string
	Type       string
	Secret     string
	CodeHashes []string
}

// MFARepository define operaciones sobre dispositivos MFA.
// Las operaciones con userID hacen ownership check: ErrNotFound si el
// dispositivo no existe, ErrForbidden si pertenece a otro usuario.
type MFARepository interface {
	// Create registra un dispositivo no verificado y activo, indexado
	// bajo el usuario.
	Create(ctx context.Context, input CreateDeviceInput) (*MFADevice, error)

	// GetByID retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, deviceID int64) (*MFADevice, error)

	// ListByUser retorna los dispositivos del usuario en orden de ID
	// ascendente (orden determinístico para la iteración del login).
	ListByUser(ctx context.Context, userID int64) ([]MFADevice, error)

	// MarkVerified marca el dispositivo como verificado, estampa último
	// uso y guarda el contador TOTP aceptado.
	MarkVerified(ctx context.Context, deviceID, counter int64) error

	// TouchUsed estampa último uso y avanza el contador anti-replay.
	TouchUsed(ctx context.Context, deviceID, counter int64) error

	// SetActive flipea el flag active con ownership check.
	SetActive(ctx context.Context, deviceID, userID int64, active bool) error

	// Delete elimina el dispositivo con ownership check.
	Delete(ctx context.Context, deviceID, userID int64) error

	// DeleteAllForUser elimina todos los dispositivos del usuario.
	// Retorna cuántos fueron eliminados. Usado por el cascade al borrar
	// un usuario.
	DeleteAllForUser(ctx context.Context, userID int64) (int, error)

	// ConsumeBackupCode busca el digest en los dispositivos del usuario
	// y, si matchea, lo elimina de forma atómica (single use). Retorna
	// true solo para exactamente un caller por código.
	ConsumeBackupCode(ctx context.Context, userID int64, codeHash string) (bool, error)

	// ReplaceBackupCodes reemplaza el set completo de digests del
	// dispositivo, invalidando el set anterior. Ownership check.
	ReplaceBackupCodes(ctx context.Context, deviceID, userID int64, codeHashes []string) error
}
