package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/minimarket/internal/domain"
)

// MemoryStore is a thread-safe in-memory snapshot store, keyed by slot.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]*domain.Snapshot),
	}
}

// Save stores a copy of snap under its slot.
func (s *MemoryStore) Save(snap *domain.Snapshot) error {
	if err := ValidateSlot(snap.Slot); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snap.Slot] = snap.Clone()
	return nil
}

// Load retrieves a copy of the snapshot in slot. It returns
// domain.ErrSnapshotNotFound if the slot is empty.
func (s *MemoryStore) Load(slot string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[slot]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap.Clone(), nil
}

// List returns snapshot metadata sorted by slot.
func (s *MemoryStore) List() ([]*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		result = append(result, snap.Info())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slot < result[j].Slot })
	return result, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
