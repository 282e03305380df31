package core

// store.go holds the single writable copy of the record set.
//
// Every mutation updates memory first and then mirrors the whole set to the
// Persistence backend. A failed save is returned to the caller but memory
// keeps the new state; the next successful save catches the backend up.
// Readers always receive copies.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrStateNotFound is returned by Persistence.Load when nothing was saved yet.
	ErrStateNotFound = errors.New("no saved inventory")

	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
)

// Store is a mutex-guarded record set mirrored to a Persistence backend.
type Store struct {
	mu      sync.RWMutex
	records []Record
	index   map[string]int // id -> position in records

	persist Persistence
	logger  *slog.Logger
}

// NewStore loads the saved set from persist. When nothing is saved, or the
// saved state cannot be read, the store starts from the bootstrap sample and
// the recovery is logged.
func NewStore(ctx context.Context, persist Persistence, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{persist: persist, logger: logger}

	records, err := persist.Load(ctx)
	switch {
	case errors.Is(err, ErrStateNotFound):
		logger.Info("no saved inventory, starting from sample")
		records = SampleRecords()
	case err != nil:
		logger.Warn("saved inventory unreadable, starting from sample", "error", err)
		records = SampleRecords()
	}

	s.records, s.index = dedupe(records)
	return s
}

// dedupe canonicalizes records and collapses duplicate ids. The last
// occurrence wins and takes the position of the first.
func dedupe(records []Record) ([]Record, map[string]int) {
	out := make([]Record, 0, len(records))
	index := make(map[string]int, len(records))
	for _, r := range records {
		r = Canonicalize(r)
		if pos, ok := index[r.ID]; ok {
			out[pos] = r
			continue
		}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	return out, index
}

// All returns a copy of every record in insertion order.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.records...)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns the record with id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.index[id]
	if !ok {
		return Record{}, false
	}
	return s.records[pos], true
}

// Find returns copies of the records for which match reports true.
func (s *Store) Find(match func(Record) bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, r := range s.records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

// ReplaceAll swaps in a new record set and saves it.
func (s *Store) ReplaceAll(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records, s.index = dedupe(records)
	return s.saveLocked(ctx)
}

// Merge upserts every record by id and saves once.
func (s *Store) Merge(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.upsertLocked(Canonicalize(r))
	}
	return s.saveLocked(ctx)
}

// Upsert replaces the record with the same id in place, or appends it.
// created reports whether the id was new.
func (s *Store) Upsert(ctx context.Context, r Record) (rec Record, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r = Canonicalize(r)
	created = s.upsertLocked(r)
	return r, created, s.saveLocked(ctx)
}

// Update replaces an existing record. Returns ErrNotFound if the id is absent.
func (s *Store) Update(ctx context.Context, r Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r = Canonicalize(r)
	pos, ok := s.index[r.ID]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, r.ID)
	}
	s.records[pos] = r
	return r, s.saveLocked(ctx)
}

func (s *Store) upsertLocked(r Record) bool {
	if pos, ok := s.index[r.ID]; ok {
		s.records[pos] = r
		return false
	}
	s.index[r.ID] = len(s.records)
	s.records = append(s.records, r)
	return true
}

// Remove deletes the record with id. Returns ErrNotFound if absent.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.records = append(s.records[:pos], s.records[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.records); i++ {
		s.index[s.records[i].ID] = i
	}
	return s.saveLocked(ctx)
}

// Clear empties the set and saves the empty state.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = []Record{}
	s.index = map[string]int{}
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	snapshot := append([]Record(nil), s.records...)
	if err := s.persist.Save(ctx, snapshot); err != nil {
		s.logger.Error("failed to save inventory", "records", len(snapshot), "error", err)
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}
