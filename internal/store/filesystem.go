package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/efreitasn/minimarket/internal/domain"
)

const (
	marketFile    = "market.json"
	portfolioFile = "portfolio.json"
	metaFile      = "meta.json"
)

// snapshotMeta is the on-disk form of a snapshot's metadata.
type snapshotMeta struct {
	ID      string    `json:"id"`
	GameID  string    `json:"game_id"`
	Slot    string    `json:"slot"`
	Day     int       `json:"day"`
	SavedAt time.Time `json:"saved_at"`
}

// FileSystemStore keeps each slot in its own directory under root, holding
// the market and portfolio documents as separate files next to a metadata
// file.
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a file system store rooted at root. The
// directory is created on first save.
func NewFileSystemStore(root string) *FileSystemStore {
	return &FileSystemStore{root: root}
}

// slotPath returns the directory of a slot.
func (s *FileSystemStore) slotPath(slot string) string {
	return filepath.Join(s.root, slot)
}

// Save writes the snapshot's documents and metadata into its slot directory.
// Metadata is written last, so a slot only lists once its documents exist.
func (s *FileSystemStore) Save(snap *domain.Snapshot) error {
	if err := ValidateSlot(snap.Slot); err != nil {
		return err
	}

	dir := s.slotPath(snap.Slot)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("ensure slot dir %s: %w", dir, err)
	}

	meta, err := json.Marshal(snapshotMeta{
		ID:      snap.ID,
		GameID:  snap.GameID,
		Slot:    snap.Slot,
		Day:     snap.Day,
		SavedAt: snap.SavedAt,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot meta: %w", err)
	}

	for _, f := range []struct {
		name string
		data []byte
	}{
		{marketFile, snap.Market},
		{portfolioFile, snap.Portfolio},
		{metaFile, meta},
	} {
		if err := writeFileAtomic(filepath.Join(dir, f.name), f.data); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the snapshot in slot. It returns domain.ErrSnapshotNotFound if
// the slot has no metadata file.
func (s *FileSystemStore) Load(slot string) (*domain.Snapshot, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}

	dir := s.slotPath(slot)
	meta, err := readMeta(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, err
	}

	market, err := os.ReadFile(filepath.Join(dir, marketFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", marketFile, err)
	}
	portfolio, err := os.ReadFile(filepath.Join(dir, portfolioFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", portfolioFile, err)
	}

	return &domain.Snapshot{
		ID:        meta.ID,
		GameID:    meta.GameID,
		Slot:      slot,
		Day:       meta.Day,
		SavedAt:   meta.SavedAt,
		Market:    market,
		Portfolio: portfolio,
	}, nil
}

// List returns the metadata of every slot directory under root, sorted by
// slot. A missing root yields an empty list.
func (s *FileSystemStore) List() ([]*domain.Snapshot, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return []*domain.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store root %s: %w", s.root, err)
	}

	result := make([]*domain.Snapshot, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || ValidateSlot(e.Name()) != nil {
			continue
		}
		meta, err := readMeta(filepath.Join(s.root, e.Name(), metaFile))
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, &domain.Snapshot{
			ID:      meta.ID,
			GameID:  meta.GameID,
			Slot:    e.Name(),
			Day:     meta.Day,
			SavedAt: meta.SavedAt,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slot < result[j].Slot })
	return result, nil
}

// Close is a no-op.
func (s *FileSystemStore) Close() error {
	return nil
}

func readMeta(path string) (*snapshotMeta, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var meta snapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedState, path, err)
	}
	return &meta, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
