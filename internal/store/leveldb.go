package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/efreitasn/minimarket/internal/domain"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Key layout: snapshot/<slot>/{market,portfolio,meta}.
const snapshotKeyPrefix = "snapshot/"

// LevelDBStore keeps save slots in a LevelDB database. The three records of
// a slot are written in one batch.
type LevelDBStore struct {
	db *leveldb.DB
}

// OpenLevelDBStore opens, or creates, the database at path.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return NewLevelDBStore(db), nil
}

// NewLevelDBStore wraps an already open database.
func NewLevelDBStore(db *leveldb.DB) *LevelDBStore {
	return &LevelDBStore{db: db}
}

func slotKey(slot, record string) []byte {
	return []byte(snapshotKeyPrefix + slot + "/" + record)
}

// Save writes the snapshot's documents and metadata atomically.
func (s *LevelDBStore) Save(snap *domain.Snapshot) error {
	if err := ValidateSlot(snap.Slot); err != nil {
		return err
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

	batch := new(leveldb.Batch)
	batch.Put(slotKey(snap.Slot, "market"), snap.Market)
	batch.Put(slotKey(snap.Slot, "portfolio"), snap.Portfolio)
	batch.Put(slotKey(snap.Slot, "meta"), meta)
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("write slot %s: %w", snap.Slot, err)
	}
	return nil
}

// Load reads the snapshot in slot. It returns domain.ErrSnapshotNotFound if
// the slot was never saved.
func (s *LevelDBStore) Load(slot string) (*domain.Snapshot, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}

	metaData, err := s.get(slot, "meta")
	if err != nil {
		return nil, err
	}
	var meta snapshotMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("%w: slot %s meta: %v", domain.ErrMalformedState, slot, err)
	}
	market, err := s.get(slot, "market")
	if err != nil {
		return nil, err
	}
	portfolio, err := s.get(slot, "portfolio")
	if err != nil {
		return nil, err
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

func (s *LevelDBStore) get(slot, record string) ([]byte, error) {
	data, err := s.db.Get(slotKey(slot, record), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s %s: %w", slot, record, err)
	}
	return data, nil
}

// List scans the metadata records and returns them sorted by slot.
func (s *LevelDBStore) List() ([]*domain.Snapshot, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(snapshotKeyPrefix)), nil)
	defer iter.Release()

	result := []*domain.Snapshot{}
	for iter.Next() {
		key := string(iter.Key())
		if !strings.HasSuffix(key, "/meta") {
			continue
		}
		var meta snapshotMeta
		if err := json.Unmarshal(iter.Value(), &meta); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedState, key, err)
		}
		slot := strings.TrimSuffix(strings.TrimPrefix(key, snapshotKeyPrefix), "/meta")
		result = append(result, &domain.Snapshot{
			ID:      meta.ID,
			GameID:  meta.GameID,
			Slot:    slot,
			Day:     meta.Day,
			SavedAt: meta.SavedAt,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("scan snapshots: %w", err)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Slot < result[j].Slot })
	return result, nil
}

// Close closes the database.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
