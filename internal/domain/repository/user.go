package repository

import (
	"context"
	"time"
)

// User representa un usuario del sistema.
// PasswordHash es un PHC string argon2id, nunca el password en claro.
type User struct {
	ID            int64
	Username      string
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	PhoneNumber   string
	EmailVerified bool
	PhoneVerified bool
	MFAEnabled    bool
	MFASecret     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLoginAt   *time.Time
	Active        bool
}

// CreateUserInput contiene los datos para crear un usuario.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
}

// UpdateUserInput reemplaza los campos mutables de un usuario.
// ID y CreatedAt se preservan siempre; el password se cambia aparte
// (UpdatePasswordHash) para no mezclar flujos.
type UpdateUserInput struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
	// Active nil deja el flag como está; un update de perfil no debería
	// desactivar al usuario por omisión.
	Active *bool
}

// UserRepository define operaciones sobre usuarios.
// Invariante: los índices secundarios por username y email están siempre
// en sync exacto con el mapa primario; toda mutación los actualiza atómicamente.
type UserRepository interface {
	// Create crea un usuario asignando un ID incremental.
	// Retorna ErrConflict si el username o el email ya existen.
	Create(ctx context.Context, input CreateUserInput) (*User, error)

	// GetByID retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByUsername busca por username exacto.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail busca por email exacto.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsernameOrEmail prueba primero username y después email.
	GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*User, error)

	// List retorna todos los usuarios.
	List(ctx context.Context) ([]User, error)

	// Update reemplaza los campos mutables y re-indexa username/email.
	// Retorna ErrNotFound si el ID no existe y ErrConflict si el nuevo
	// username o email colisiona con OTRO usuario.
	Update(ctx context.Context, id int64, input UpdateUserInput) (*User, error)

	// Delete elimina al usuario de los tres índices.
	// Retorna true si algo fue eliminado.
	Delete(ctx context.Context, id int64) (bool, error)

	// ExistsByUsername consulta el índice secundario.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail consulta el índice secundario.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// SetMFA setea el flag mfaEnabled y el secret de referencia.
	// Con enabled=false el secret se limpia.
	SetMFA(ctx context.Context, id int64, enabled bool, secret string) error

	// UpdateLastLogin estampa el momento actual como último login.
	UpdateLastLogin(ctx context.Context, id int64) error

	// SetEmailVerified marca el email como verificado o no.
	SetEmailVerified(ctx context.Context, id int64, verified bool) error

	// UpdatePasswordHash reemplaza el hash del password.
	UpdatePasswordHash(ctx context.Context, id int64, newHash string) error

	// Count retorna la cantidad total de usuarios.
	Count(ctx context.Context) (int64, error)
}
