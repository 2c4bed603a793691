package dto

// LoginRequest representa la solicitud de login por password.
// Code es opcional: TOTP de 6 dígitos o backup code de 8 dígitos
// cuando el usuario tiene MFA habilitado.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
	Code            string `json:"code,omitempty"`
}

// LoginResponse representa la respuesta exitosa de login.
type LoginResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"` // "Bearer"
	ExpiresIn   int64        `json:"expiresIn"` // segundos
}

// StartVerificationResponse devuelve el token one-shot generado.
// En una instalación real viajaría por email; acá se devuelve en la
// respuesta porque no hay salida SMTP.
type StartVerificationResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// ConfirmEmailRequest confirma la verificación de email.
type ConfirmEmailRequest struct {
	Token string `json:"token"`
}

// StartPasswordResetRequest inicia el reset por email.
type StartPasswordResetRequest struct {
	Email string `json:"email"`
}

// ConfirmPasswordResetRequest completa el reset con el token one-shot.
type ConfirmPasswordResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}
