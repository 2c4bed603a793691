package controllers

import (
	"net/http"

	api "github.com/dropDatabas3/bookjohn/internal/http"
	"github.com/dropDatabas3/bookjohn/internal/http/dto"
	"github.com/dropDatabas3/bookjohn/internal/http/middlewares"
	"github.com/dropDatabas3/bookjohn/internal/service"
)

// MFAController maneja el ciclo de vida de dispositivos MFA. Todas las
// rutas requieren bearer token: el userID sale de los claims, nunca de un
// parámetro del cliente.
type MFAController struct {
	mfa *service.MFAService
}

// NewMFAController crea el controller.
func NewMFAController(mfa *service.MFAService) *MFAController {
	return &MFAController{mfa: mfa}
}

// Setup maneja POST /api/mfa/setup/totp. La respuesta expone el secreto y
// los backup codes en claro por única vez, con Cache-Control: no-store.
func (c *MFAController) Setup(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	var req dto.SetupDeviceRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}

	enr, err := c.mfa.Setup(r.Context(), userID, req.DeviceName)
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	api.WriteSuccess(w, http.StatusCreated, "MFA device enrolled successfully", dto.ToEnrollmentResponse(enr))
}

// Verify maneja POST /api/mfa/verify
func (c *MFAController) Verify(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	var req dto.VerifyDeviceRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}
	if req.DeviceID <= 0 {
		api.WriteError(w, http.StatusBadRequest, "deviceId is required")
		return
	}

	if err := c.mfa.Verify(r.Context(), req.DeviceID, userID, req.Code); err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "MFA device verified successfully", nil)
}

// Devices maneja GET /api/mfa/devices
func (c *MFAController) Devices(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	devs, err := c.mfa.Devices(r.Context(), userID)
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "MFA devices retrieved successfully", dto.ToDeviceResponses(devs))
}

// Delete maneja DELETE /api/mfa/devices/{deviceId}
func (c *MFAController) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	deviceID, ok := pathID(w, r, "deviceId")
	if !ok {
		return
	}
	if err := c.mfa.DeleteDevice(r.Context(), deviceID, userID); err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "MFA device deleted successfully", nil)
}

// Activate maneja PUT /api/mfa/devices/{deviceId}/activate
func (c *MFAController) Activate(w http.ResponseWriter, r *http.Request) {
	c.setActive(w, r, true, "MFA device activated successfully")
}

// Deactivate maneja PUT /api/mfa/devices/{deviceId}/deactivate
func (c *MFAController) Deactivate(w http.ResponseWriter, r *http.Request) {
	c.setActive(w, r, false, "MFA device deactivated successfully")
}

func (c *MFAController) setActive(w http.ResponseWriter, r *http.Request, active bool, message string) {
	userID := middlewares.GetUserID(r.Context())
	deviceID, ok := pathID(w, r, "deviceId")
	if !ok {
		return
	}
	if err := c.mfa.SetDeviceActive(r.Context(), deviceID, userID, active); err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, message, nil)
}

// RegenerateBackupCodes maneja POST /api/mfa/backup-codes/regenerate.
// Invalida el set anterior completo y devuelve los códigos nuevos por
// única vez.
func (c *MFAController) RegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	var req dto.RegenerateBackupCodesRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}
	if req.DeviceID <= 0 {
		api.WriteError(w, http.StatusBadRequest, "deviceId is required")
		return
	}
	codes, err := c.mfa.RegenerateBackupCodes(r.Context(), userID, req.DeviceID)
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	api.WriteSuccess(w, http.StatusOK, "Backup codes regenerated successfully", dto.BackupCodesResponse{BackupCodes: codes})
}

// Status maneja GET /api/mfa/status
func (c *MFAController) Status(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	st, err := c.mfa.Status(r.Context(), userID)
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "MFA status retrieved successfully", dto.ToMFAStatusResponse(st))
}
