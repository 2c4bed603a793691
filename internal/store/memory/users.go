// Package memory implementa los repositorios del dominio sobre mapas en
// proceso. Cada store es un recurso compartido único protegido por un
// RWMutex propio: toda mutación es atómica respecto del resto de las
// mutaciones del mismo store, y las lecturas nunca observan un write a
// medio aplicar.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
)

// UserStore mantiene el mapa primario por ID y dos índices secundarios
// (username, email). Los índices se actualizan únicamente dentro de las
// operaciones del store, así ningún caller puede desincronizarlos.
type UserStore struct {
	mu         sync.RWMutex
	byID       map[int64]*repository.User
	byUsername map[string]int64
	byEmail    map[string]int64
	nextID     int64

	now func() time.Time
}

// NewUserStore crea un store vacío.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:       make(map[int64]*repository.User),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
		nextID:     1,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.UserRepository = (*UserStore)(nil)

func cloneUser(u *repository.User) *repository.User {
	cp := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		cp.LastLoginAt = &t
	}
	return &cp
}

func (s *UserStore) Create(_ context.Context, input repository.CreateUserInput) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[input.Username]; ok {
		return nil, fmt.Errorf("username %q: %w", input.Username, repository.ErrConflict)
	}
	if _, ok := s.byEmail[input.Email]; ok {
		return nil, fmt.Errorf("email %q: %w", input.Email, repository.ErrConflict)
	}

	now := s.now()
	u := &repository.User{
		ID:           s.nextID,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
		Active:       true,
	}
	s.nextID++

	s.byID[u.ID] = u
	s.byUsername[u.Username] = u.ID
	s.byEmail[u.Email] = u.ID
	return cloneUser(u), nil
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("username %q: %w", username, repository.ErrNotFound)
	}
	return cloneUser(s.byID[id]), nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("email %q: %w", email, repository.ErrNotFound)
	}
	return cloneUser(s.byID[id]), nil
}

func (s *UserStore) GetByUsernameOrEmail(_ context.Context, usernameOrEmail string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byUsername[usernameOrEmail]; ok {
		return cloneUser(s.byID[id]), nil
	}
	if id, ok := s.byEmail[usernameOrEmail]; ok {
		return cloneUser(s.byID[id]), nil
	}
	return nil, fmt.Errorf("user %q: %w", usernameOrEmail, repository.ErrNotFound)
}

func (s *UserStore) List(_ context.Context) ([]repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]repository.User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update reemplaza los campos mutables y re-indexa username/email de forma
// atómica. Un username/email que ya pertenece a OTRO usuario se rechaza
// con ErrConflict en vez de pisar el índice ajeno.
func (s *UserStore) Update(_ context.Context, id int64, input repository.UpdateUserInput) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	if otherID, ok := s.byUsername[input.Username]; ok && otherID != id {
		return nil, fmt.Errorf("username %q: %w", input.Username, repository.ErrConflict)
	}
	if otherID, ok := s.byEmail[input.Email]; ok && otherID != id {
		return nil, fmt.Errorf("email %q: %w", input.Email, repository.ErrConflict)
	}

	delete(s.byUsername, u.Username)
	delete(s.byEmail, u.Email)

	u.Username = input.Username
	u.Email = input.Email
	u.FirstName = input.FirstName
	u.LastName = input.LastName
	u.PhoneNumber = input.PhoneNumber
	if input.Active != nil {
		u.Active = *input.Active
	}
	u.UpdatedAt = s.now()

	s.byUsername[u.Username] = id
	s.byEmail[u.Email] = id
	return cloneUser(u), nil
}

func (s *UserStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	delete(s.byID, id)
	delete(s.byUsername, u.Username)
	delete(s.byEmail, u.Email)
	return true, nil
}

func (s *UserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byUsername[username]
	return ok, nil
}

func (s *UserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *UserStore) SetMFA(_ context.Context, id int64, enabled bool, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	u.MFAEnabled = enabled
	if enabled {
		u.MFASecret = secret
	} else {
		u.MFASecret = ""
	}
	u.UpdatedAt = s.now()
	return nil
}

func (s *UserStore) UpdateLastLogin(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	now := s.now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	return nil
}

func (s *UserStore) SetEmailVerified(_ context.Context, id int64, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	u.EmailVerified = verified
	u.UpdatedAt = s.now()
	return nil
}

func (s *UserStore) UpdatePasswordHash(_ context.Context, id int64, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	u.PasswordHash = newHash
	u.UpdatedAt = s.now()
	return nil
}

func (s *UserStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}
