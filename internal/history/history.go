// Package history persists accepted transcriptions, newest first.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit caps the number of stored entries.
const DefaultLimit = 1000

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("history entry not found")

// Entry is one accepted transcription. Timestamp is RFC3339 for new entries;
// entries written by older versions keep whatever string they had.
type Entry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Store is a JSON-file backed history. Every mutation rewrites the file.
type Store struct {
	mu      sync.RWMutex
	path    string
	limit   int
	entries []Entry
	now     func() time.Time
}

// Open loads the history at path. A missing file is an empty history.
func Open(path string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Store{path: path, limit: limit, now: time.Now}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &s.entries); err != nil {
			return nil, fmt.Errorf("parse history %s: %w", path, err)
		}
	}
	for i := range s.entries {
		if s.entries[i].ID == "" {
			s.entries[i].ID = uuid.NewString()
		}
	}
	if len(s.entries) > s.limit {
		s.entries = s.entries[:s.limit]
	}
	return s, nil
}

// Add prepends text and trims to the limit.
func (s *Store) Add(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := Entry{ID: uuid.NewString(), Text: text, Timestamp: s.now().Format(time.RFC3339)}
	s.entries = append([]Entry{e}, s.entries...)
	if len(s.entries) > s.limit {
		s.entries = s.entries[:s.limit]
	}
	return s.save()
}

// List returns a copy of all entries, newest first.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...)
}

// Get returns the entry with id.
func (s *Store) Get(id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return s.save()
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return os.Rename(tmp, s.path)
}
