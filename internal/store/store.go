package store

import (
	"sort"
	"sync"
	"time"
)

// FilterOptions narrows the records returned by Filter.
type FilterOptions struct {
	Since  time.Duration // Only records closed within now-since (0=all)
	Preset string        // Exact preset name ("" = any)
	Limit  int           // Maximum results (0=unlimited)
}

// Store holds the toast history in memory and mirrors it to a Persistence.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	records    []Record // oldest first
	index      map[string]int
	maxEntries int
	persisted  int // records on disk, including ones trimmed from memory

	persistence Persistence
	closed      bool
}

// NewStore creates a store keeping at most maxEntries records (0 =
// unlimited). persistence may be nil for an in-memory history.
func NewStore(persistence Persistence, maxEntries int) *Store {
	return &Store{
		now:         time.Now,
		index:       make(map[string]int),
		maxEntries:  maxEntries,
		persistence: persistence,
	}
}

// Hydrate loads records from persistence into the store.
func (s *Store) Hydrate() error {
	if s.persistence == nil {
		return nil
	}

	records, err := s.persistence.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.persisted = len(records)
	for _, r := range records {
		if _, exists := s.index[r.ID]; exists {
			continue
		}
		s.records = append(s.records, r)
		s.index[r.ID] = len(s.records) - 1
	}
	s.trim()
	return nil
}

// Add records a closed toast. Duplicate IDs are ignored. The record is kept
// in memory only once it is on disk.
func (s *Store) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, exists := s.index[r.ID]; exists {
		return nil
	}

	if s.persistence != nil {
		if err := s.persistence.Append(r); err != nil {
			return err
		}
		s.persisted++
	}

	s.records = append(s.records, r)
	s.index[r.ID] = len(s.records) - 1

	s.trim()
	return s.compact()
}

// trim drops the oldest records beyond maxEntries. Callers hold mu.
func (s *Store) trim() {
	if s.maxEntries <= 0 || len(s.records) <= s.maxEntries {
		return
	}
	s.records = append([]Record(nil), s.records[len(s.records)-s.maxEntries:]...)
	s.reindex()
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.records))
	for i, r := range s.records {
		s.index[r.ID] = i
	}
}

// compact rewrites the file once it holds twice the retained records.
// Callers hold mu.
func (s *Store) compact() error {
	if s.persistence == nil || s.maxEntries <= 0 || s.persisted < 2*s.maxEntries {
		return nil
	}
	if err := s.persistence.Rewrite(s.records); err != nil {
		return err
	}
	s.persisted = len(s.records)
	return nil
}

// Get returns the record with the given ID.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[id]
	if !ok {
		return Record{}, false
	}
	return s.records[idx], true
}

// Count returns the number of records held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Filter returns matching records, most recently closed first.
func (s *Store) Filter(opts FilterOptions) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cutoff time.Time
	if opts.Since > 0 {
		cutoff = s.now().Add(-opts.Since)
	}

	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if !cutoff.IsZero() && r.ClosedAt.Before(cutoff) {
			continue
		}
		if opts.Preset != "" && r.Preset != opts.Preset {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ClosedAt.After(out[j].ClosedAt)
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// Clear removes every record from memory and storage.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	s.records = nil
	s.index = make(map[string]int)
	s.persisted = 0

	if s.persistence != nil {
		return s.persistence.Clear()
	}
	return nil
}

// Close closes the store and its persistence.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.persistence != nil {
		return s.persistence.Close()
	}
	return nil
}

// Errors
var (
	ErrStoreClosed = storeError("store is closed")
)

type storeError string

func (e storeError) Error() string {
	return string(e)
}
