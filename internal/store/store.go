// Package store persists extraction results as a best-effort archive. The
// pipeline writes to it fire-and-forget; the serving layer reads history
// from it.
package store

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"
)

// ExtractionRecord is one archived extraction: what file was processed,
// the full text that came out of it, and the principal it was processed
// for. Field edits made later in a form UI are never written back here.
type ExtractionRecord struct {
	ID         string `badgerhold:"key"`
	Filename   string
	Text       string
	Principal  string
	FieldCount int
	CreatedAt  time.Time
}

// Store wraps the badgerhold database holding extraction records.
type Store struct {
	store *badgerhold.Store
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // badger's own logger is too chatty for stdio mode

	st, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	return &Store{store: st}, nil
}

// Save upserts one extraction record.
func (s *Store) Save(rec ExtractionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record ID is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if err := s.store.Upsert(rec.ID, rec); err != nil {
		return fmt.Errorf("failed to save extraction record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]ExtractionRecord, error) {
	var recs []ExtractionRecord
	if err := s.store.Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("failed to list extraction records: %w", err)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Get fetches one record by ID.
func (s *Store) Get(id string) (*ExtractionRecord, error) {
	var rec ExtractionRecord
	if err := s.store.Get(id, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("extraction record not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get extraction record: %w", err)
	}
	return &rec, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
