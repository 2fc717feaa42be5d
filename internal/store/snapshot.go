package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/efreitasn/minimarket/internal/domain"
)

var slotRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// SnapshotStore persists saved games by slot name.
type SnapshotStore interface {
	// Save stores snap under snap.Slot, replacing any previous save in that slot.
	Save(snap *domain.Snapshot) error
	// Load returns the snapshot saved in slot, or domain.ErrSnapshotNotFound.
	Load(slot string) (*domain.Snapshot, error)
	// List returns the metadata of every saved slot, sorted by slot name.
	List() ([]*domain.Snapshot, error)
	// Close releases the store's resources.
	Close() error
}

// Open parses a store argument and opens the matching store:
// "memory", "fs:<dir>" or "leveldb:<dir>".
func Open(arg string) (SnapshotStore, error) {
	if arg == "memory" {
		return NewMemoryStore(), nil
	}

	kind, path, ok := strings.Cut(arg, ":")
	if !ok || path == "" {
		return nil, fmt.Errorf("store arg invalid: %q", arg)
	}

	switch kind {
	case "fs":
		return NewFileSystemStore(path), nil
	case "leveldb":
		return OpenLevelDBStore(path)
	default:
		return nil, fmt.Errorf("store type invalid: %q", kind)
	}
}

// ValidateSlot checks that slot is safe to use as a key and a directory name.
func ValidateSlot(slot string) error {
	if !slotRegex.MatchString(slot) {
		return &domain.ValidationError{
			Message: "slot must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	return nil
}
