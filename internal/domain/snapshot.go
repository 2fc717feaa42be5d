package domain

import "time"

// Snapshot is a saved game: the codec's two documents plus the metadata the
// save slots are listed by.
type Snapshot struct {
	ID        string // unique per save
	GameID    string // the game the save belongs to
	Slot      string
	Day       int
	SavedAt   time.Time
	Market    []byte // market document
	Portfolio []byte // portfolio document
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Market = append([]byte(nil), s.Market...)
	c.Portfolio = append([]byte(nil), s.Portfolio...)
	return &c
}

// Info returns a copy of the snapshot without its documents.
func (s *Snapshot) Info() *Snapshot {
	c := *s
	c.Market = nil
	c.Portfolio = nil
	return &c
}
