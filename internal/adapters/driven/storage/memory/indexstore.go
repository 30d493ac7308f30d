package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure IndexStorage implements the interface.
var _ driven.IndexStorage = (*IndexStorage)(nil)

// IndexStorage holds the last saved snapshot in memory.
// Save copies its input so later mutation by the caller is not observed.
type IndexStorage struct {
	mu       sync.RWMutex
	saved    bool
	manifest domain.IndexManifest
	entries  []domain.IndexEntry
	saveErr  error
	saves    int
}

// NewIndexStorage creates empty in-memory index storage.
func NewIndexStorage() *IndexStorage {
	return &IndexStorage{}
}

// FailSaves makes every subsequent Save return err. Pass nil to recover.
func (s *IndexStorage) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves returns how many snapshots have been written successfully.
func (s *IndexStorage) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Exists reports whether a snapshot has been saved.
func (s *IndexStorage) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saved
}

// Load returns a copy of the saved snapshot.
func (s *IndexStorage) Load(_ context.Context) (domain.IndexManifest, []domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return domain.IndexManifest{}, nil, domain.ErrIndexNotReady
	}
	return s.manifest, copyEntries(s.entries), nil
}

// Save replaces the snapshot.
func (s *IndexStorage) Save(_ context.Context, manifest domain.IndexManifest, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersist, s.saveErr)
	}
	manifest.Entries = len(entries)
	s.manifest = manifest
	s.entries = copyEntries(entries)
	s.saved = true
	s.saves++
	return nil
}

// Remove discards the snapshot.
func (s *IndexStorage) Remove(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = false
	s.manifest = domain.IndexManifest{}
	s.entries = nil
	return nil
}

// Path returns ":memory:".
func (s *IndexStorage) Path() string {
	return ":memory:"
}

func copyEntries(entries []domain.IndexEntry) []domain.IndexEntry {
	out := make([]domain.IndexEntry, len(entries))
	for i, e := range entries {
		e.Embedding = append([]float32(nil), e.Embedding...)
		e.Metadata = maps.Clone(e.Metadata)
		out[i] = e
	}
	return out
}
