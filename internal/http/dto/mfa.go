package dto

import (
	"time"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
	"github.com/dropDatabas3/bookjohn/internal/service"
)

// SetupDeviceRequest enrola un dispositivo TOTP nuevo.
type SetupDeviceRequest struct {
	DeviceName string `json:"deviceName"`
}

// VerifyDeviceRequest confirma el enrolamiento con un código TOTP.
type VerifyDeviceRequest struct {
	DeviceID int64  `json:"deviceId"`
	Code     string `json:"code"`
}

// RegenerateBackupCodesRequest pide un set nuevo para un dispositivo.
type RegenerateBackupCodesRequest struct {
	DeviceID int64 `json:"deviceId"`
}

// DeviceResponse es la vista pública de un dispositivo MFA. Nunca incluye
// el secreto TOTP.
type DeviceResponse struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Verified        bool       `json:"verified"`
	Active          bool       `json:"active"`
	BackupCodesLeft int        `json:"backupCodesLeft"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastUsedAt      *time.Time `json:"lastUsedAt,omitempty"`
}

// EnrollmentResponse es la única respuesta que expone el secreto y los
// backup codes en claro.
type EnrollmentResponse struct {
	Device      DeviceResponse `json:"device"`
	Secret      string         `json:"secret"`
	OTPAuthURL  string         `json:"otpauthUrl"`
	BackupCodes []string       `json:"backupCodes"`
}

// BackupCodesResponse devuelve un set regenerado de backup codes.
type BackupCodesResponse struct {
	BackupCodes []string `json:"backupCodes"`
}

// MFAStatusResponse resume el estado MFA del usuario.
type MFAStatusResponse struct {
	Enabled         bool `json:"enabled"`
	TotalDevices    int  `json:"totalDevices"`
	ActiveDevices   int  `json:"activeDevices"`
	VerifiedDevices int  `json:"verifiedDevices"`
}

// ToDeviceResponse proyecta un dispositivo a la vista pública.
func ToDeviceResponse(d *repository.MFADevice) DeviceResponse {
	return DeviceResponse{
		ID:              d.ID,
		Name:            d.Name,
		Type:            d.Type,
		Verified:        d.Verified,
		Active:          d.Active,
		BackupCodesLeft: d.BackupCodesLeft,
		CreatedAt:       d.CreatedAt,
		LastUsedAt:      d.LastUsedAt,
	}
}

// ToDeviceResponses proyecta una lista de dispositivos.
func ToDeviceResponses(devs []repository.MFADevice) []DeviceResponse {
	out := make([]DeviceResponse, 0, len(devs))
	for i := range devs {
		out = append(out, ToDeviceResponse(&devs[i]))
	}
	return out
}

// ToEnrollmentResponse proyecta el resultado de un enrolamiento.
func ToEnrollmentResponse(e *service.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		Device:      ToDeviceResponse(e.Device),
		Secret:      e.Secret,
		OTPAuthURL:  e.OTPAuthURL,
		BackupCodes: e.BackupCodes,
	}
}

// ToMFAStatusResponse proyecta el resumen de estado.
func ToMFAStatusResponse(st *service.MFAStatus) MFAStatusResponse {
	return MFAStatusResponse{
		Enabled:         st.Enabled,
		TotalDevices:    st.TotalDevices,
		ActiveDevices:   st.ActiveDevices,
		VerifiedDevices: st.VerifiedDevices,
	}
}
