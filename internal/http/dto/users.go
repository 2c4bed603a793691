// Package dto contiene los cuerpos de request y response de la API pública.
// Ningún response expone password hashes ni secretos TOTP.
package dto

import (
	"time"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
)

// CreateUserRequest representa la solicitud de registro de usuario.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// UpdateUserRequest representa la actualización de perfil. Active omitido
// deja el flag como está.
type UpdateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Active      *bool  `json:"active,omitempty"`
}

// UserResponse es la vista pública de un usuario.
type UserResponse struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName,omitempty"`
	LastName      string     `json:"lastName,omitempty"`
	PhoneNumber   string     `json:"phoneNumber,omitempty"`
	EmailVerified bool       `json:"emailVerified"`
	PhoneVerified bool       `json:"phoneVerified"`
	MFAEnabled    bool       `json:"mfaEnabled"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
}

// ToUserResponse proyecta el modelo de dominio a la vista pública.
func ToUserResponse(u *repository.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		PhoneNumber:   u.PhoneNumber,
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
		MFAEnabled:    u.MFAEnabled,
		Active:        u.Active,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		LastLoginAt:   u.LastLoginAt,
	}
}

// ToUserResponses proyecta una lista completa.
func ToUserResponses(users []repository.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, ToUserResponse(&users[i]))
	}
	return out
}
