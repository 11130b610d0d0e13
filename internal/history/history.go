// Package history keeps saved panel results in a single JSON file so they can
// be reviewed or exported after the session ends.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const entryTypeResult = "result"

// Entry is one saved result.
type Entry struct {
	EntryType string    `json:"entryType" yaml:"-"`
	ID        string    `json:"id" yaml:"id"`
	Panel     string    `json:"panel" yaml:"panel"`
	Engine    string    `json:"engine,omitempty" yaml:"engine,omitempty"`
	Query     string    `json:"query" yaml:"query"`
	Markup    bool      `json:"markup,omitempty" yaml:"markup,omitempty"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// ErrNotFound is returned by Find when no entry matches.
var ErrNotFound = errors.New("history entry not found")

// NewEntry stamps a result with a fresh id and the current time.
func NewEntry(panel, engine, query string, markup bool, content string) Entry {
	return Entry{
		EntryType: entryTypeResult,
		ID:        uuid.NewString(),
		Panel:     panel,
		Engine:    engine,
		Query:     query,
		Markup:    markup,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// Store appends to and reads from the history file. Entries of other types
// written by newer versions are preserved on rewrite.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a store for path. The file is created on first Append.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path is the backing file.
func (s *Store) Path() string {
	return s.path
}

// Append adds entries to the end of the file.
func (s *Store) Append(entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raws := make([]json.RawMessage, 0, len(entries))
	for _, entry := range entries {
		if entry.EntryType == "" {
			entry.EntryType = entryTypeResult
		}
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		raws = append(raws, raw)
	}
	existing, err := s.loadEntries()
	if err != nil {
		return err
	}
	return s.writeEntries(append(existing, raws...))
}

// Load returns saved results, newest first. A missing file is empty.
func (s *Store) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raws, err := s.loadEntries()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(raws))
	for _, raw := range raws {
		entryType, err := detectEntryType(raw)
		if err != nil {
			return nil, err
		}
		if entryType != entryTypeResult {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Find returns the entry whose id starts with prefix. Ambiguous prefixes are
// an error.
func (s *Store) Find(prefix string) (Entry, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return Entry{}, ErrNotFound
	}
	entries, err := s.Load()
	if err != nil {
		return Entry{}, err
	}
	var match *Entry
	for i := range entries {
		if strings.HasPrefix(entries[i].ID, prefix) {
			if match != nil {
				return Entry{}, fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = &entries[i]
		}
	}
	if match == nil {
		return Entry{}, ErrNotFound
	}
	return *match, nil
}

// Clear removes every saved result.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raws, err := s.loadEntries()
	if err != nil {
		return err
	}
	kept := raws[:0]
	for _, raw := range raws {
		entryType, err := detectEntryType(raw)
		if err != nil {
			return err
		}
		if entryType != entryTypeResult {
			kept = append(kept, raw)
		}
	}
	return s.writeEntries(kept)
}

func (s *Store) writeEntries(entries []json.RawMessage) error {
	if entries == nil {
		entries = []json.RawMessage{}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Store) loadEntries() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("history file %s: %w", s.path, err)
	}
	return entries, nil
}

type entryHeader struct {
	EntryType string `json:"entryType"`
}

func detectEntryType(raw json.RawMessage) (string, error) {
	var header entryHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return "", err
	}
	if header.EntryType == "" {
		return entryTypeResult, nil
	}
	return header.EntryType, nil
}
