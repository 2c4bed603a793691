package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
)

// deviceRecord es el registro interno: el device más el set de digests de
// backup codes. Los digests nunca salen del store; afuera solo se ve el
// contador BackupCodesLeft.
type deviceRecord struct {
	dev        repository.MFADevice
	codeHashes map[string]struct{}
}

// MFAStore mantiene los dispositivos por ID más un índice userID→deviceIDs.
// ConsumeBackupCode hace check-and-remove bajo el write lock, así un código
// single-use no puede gastarse dos veces bajo concurrencia.
type MFAStore struct {
	mu     sync.RWMutex
	byID   map[int64]*deviceRecord
	byUser map[int64][]int64
	nextID int64

	now func() time.Time
}

// NewMFAStore crea un store vacío.
func NewMFAStore() *MFAStore {
	return &MFAStore{
		byID:   make(map[int64]*deviceRecord),
		byUser: make(map[int64][]int64),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.MFARepository = (*MFAStore)(nil)

func (r *deviceRecord) snapshot() *repository.MFADevice {
	cp := r.dev
	cp.BackupCodesLeft = len(r.codeHashes)
	if r.dev.LastUsedAt != nil {
		t := *r.dev.LastUsedAt
		cp.LastUsedAt = &t
	}
	return &cp
}

// getOwnedLocked resuelve un device con ownership check. Requiere lock tomado.
func (s *MFAStore) getOwnedLocked(deviceID, userID int64) (*deviceRecord, error) {
	rec, ok := s.byID[deviceID]
	if !ok {
		return nil, fmt.Errorf("device %d: %w", deviceID, repository.ErrNotFound)
	}
	if rec.dev.UserID != userID {
		return nil, fmt.Errorf("device %d: %w", deviceID, repository.ErrForbidden)
	}
	return rec, nil
}

func (s *MFAStore) Create(_ context.Context, input repository.CreateDeviceInput) (*repository.MFADevice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hashes := make(map[string]struct{}, len(input.CodeHashes))
	for _, h := range input.CodeHashes {
		hashes[h] = struct{}{}
	}

	rec := &deviceRecord{
		dev: repository.MFADevice{
			ID:        s.nextID,
			UserID:    input.UserID,
			Name:      input.Name,
			Type:      input.Type,
			Secret:    input.Secret,
			Active:    true,
			CreatedAt: s.now(),
		},
		codeHashes: hashes,
	}
	s.nextID++

	s.byID[rec.dev.ID] = rec
	s.byUser[input.UserID] = append(s.byUser[input.UserID], rec.dev.ID)
	return rec.snapshot(), nil
}

func (s *MFAStore) GetByID(_ context.Context, deviceID int64) (*repository.MFADevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[deviceID]
	if !ok {
		return nil, fmt.Errorf("device %d: %w", deviceID, repository.ErrNotFound)
	}
	return rec.snapshot(), nil
}

func (s *MFAStore) ListByUser(_ context.Context, userID int64) ([]repository.MFADevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byUser[userID]
	out := make([]repository.MFADevice, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.byID[id]; ok {
			out = append(out, *rec.snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MFAStore) MarkVerified(_ context.Context, deviceID, counter int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[deviceID]
	if !ok {
		return fmt.Errorf("device %d: %w", deviceID, repository.ErrNotFound)
	}
	now := s.now()
	rec.dev.Verified = true
	rec.dev.LastUsedAt = &now
	if counter > rec.dev.LastCounter {
		rec.dev.LastCounter = counter
	}
	return nil
}

func (s *MFAStore) TouchUsed(_ context.Context, deviceID, counter int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[deviceID]
	if !ok {
		return fmt.Errorf("device %d: %w", deviceID, repository.ErrNotFound)
	}
	now := s.now()
	rec.dev.LastUsedAt = &now
	if counter > rec.dev.LastCounter {
		rec.dev.LastCounter = counter
	}
	return nil
}

func (s *MFAStore) SetActive(_ context.Context, deviceID, userID int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.getOwnedLocked(deviceID, userID)
	if err != nil {
		return err
	}
	rec.dev.Active = active
	return nil
}

func (s *MFAStore) Delete(_ context.Context, deviceID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getOwnedLocked(deviceID, userID); err != nil {
		return err
	}
	s.removeLocked(deviceID, userID)
	return nil
}

func (s *MFAStore) removeLocked(deviceID, userID int64) {
	delete(s.byID, deviceID)
	ids := s.byUser[userID]
	for i, id := range ids {
		if id == deviceID {
			s.byUser[userID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.byUser[userID]) == 0 {
		delete(s.byUser, userID)
	}
}

func (s *MFAStore) DeleteAllForUser(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.byUser[userID]
	for _, id := range ids {
		delete(s.byID, id)
	}
	delete(s.byUser, userID)
	return len(ids), nil
}

func (s *MFAStore) ConsumeBackupCode(_ context.Context, userID int64, codeHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := append([]int64(nil), s.byUser[userID]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		rec, ok := s.byID[id]
		if !ok {
			continue
		}
		if _, ok := rec.codeHashes[codeHash]; ok {
			delete(rec.codeHashes, codeHash)
			now := s.now()
			rec.dev.LastUsedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (s *MFAStore) ReplaceBackupCodes(_ context.Context, deviceID, userID int64, codeHashes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.getOwnedLocked(deviceID, userID)
	if err != nil {
		return err
	}
	hashes := make(map[string]struct{}, len(codeHashes))
	for _, h := range codeHashes {
		hashes[h] = struct{}{}
	}
	rec.codeHashes = hashes
	return nil
}
