package core

import (
	"sync"
	"time"
)

// Store owns the loaded collection and the browse state derived from it.
//
// Lifecycle: empty at creation, populated by Load, replaced wholesale by the
// next Load. Records are never edited in place. A store that has not been
// loaded yet is a valid empty collection, not an error.
//
// Store is safe for concurrent use; readers get snapshots.
type Store struct {
	mu        sync.RWMutex
	header    Header
	records   []Record
	source    string
	loadedAt  time.Time
	selection Selection

	selectedArtist string
	selectedAlbum  Record
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the records. It does not touch the folder selection; use
// Commit to replace both together.
func (s *Store) Load(header Header, rows []Record, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.header = header
	s.records = rows
	s.source = source
	s.loadedAt = time.Now()
	s.selectedArtist = ""
	s.selectedAlbum = nil
}

// Commit is Load followed by ResetSelection(folders) under one lock, so no
// reader observes the new records with the previous selection.
func (s *Store) Commit(header Header, rows []Record, source string, folders []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.header = header
	s.records = rows
	s.source = source
	s.loadedAt = time.Now()
	s.selectedArtist = ""
	s.selectedAlbum = nil
	s.selection.Reset(folders)
}

// Snapshot returns the records and a copy of the selection taken together.
func (s *Store) Snapshot() ([]Record, Selection) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.selection.clone()
}

// Records returns every loaded record in load order.
// The slice must not be modified.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Header returns the header of the current load.
func (s *Store) Header() Header {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.header
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Loaded reports whether any load has been committed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loadedAt.IsZero()
}

// Source returns the name of the source of the current load and when it was
// committed.
func (s *Store) Source() (string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source, s.loadedAt
}

// Selection returns a copy of the active folder filter.
func (s *Store) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.clone()
}

// ResetSelection selects exactly the given folders.
func (s *Store) ResetSelection(folders []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Reset(folders)
}

// SetFolderSelected includes or excludes one folder. It reports whether the
// selection changed. An unset selection is first seeded with every loaded
// folder, so excluding one folder keeps the others visible.
func (s *Store) SetFolderSelected(folder string, included bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selection.IsSet() {
		s.selection.Reset(FolderNames(ExtractFolders(s.records)))
	}
	return s.selection.SetFolderSelected(folder, included)
}

// ClearSelection empties the folder filter; nothing stays visible.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Clear()
}

// SelectArtist sets the artist cursor and drops the album cursor.
func (s *Store) SelectArtist(artist string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedArtist = artist
	s.selectedAlbum = nil
}

// SelectAlbum sets the album cursor.
func (s *Store) SelectAlbum(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedAlbum = r
}

// Cursors returns the current artist and album selection. Either may be empty.
func (s *Store) Cursors() (artist string, album Record) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedArtist, s.selectedAlbum
}
