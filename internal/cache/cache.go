// Package cache persists per-document fingerprints and validation outcomes
// between runs. A single Store owns the file; every write goes through its
// mutex and lands via temp-file, fsync and rename.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fulmenhq/docneat/pkg/logger"
	"github.com/fulmenhq/docneat/pkg/safeio"
)

// Version gates the on-disk format. Any other value is discarded on load.
const Version = "1.0.0"

// Validation outcomes recorded by callers.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// Entry is the cached state of one document.
type Entry struct {
	Hash             string    `json:"hash"`
	LastProcessed    time.Time `json:"last_processed"`
	LastModified     time.Time `json:"last_modified"`
	ValidationStatus string    `json:"validation_status"`
	ErrorCount       int       `json:"error_count"`
	WarningCount     int       `json:"warning_count"`
}

// File is the JSON document written to disk.
type File struct {
	Version     string           `json:"version"`
	LastUpdated time.Time        `json:"last_updated"`
	Documents   map[string]Entry `json:"documents"`
}

// Error is an infrastructure failure reading or writing the cache.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Stats summarizes the cache contents.
type Stats struct {
	Total         int       `json:"total_documents"`
	Passed        int       `json:"passed"`
	Failed        int       `json:"failed"`
	TotalErrors   int       `json:"total_errors"`
	TotalWarnings int       `json:"total_warnings"`
	LastUpdated   time.Time `json:"last_updated"`
	Path          string    `json:"cache_file"`
}

// Store is the owning reader/writer of one cache file.
type Store struct {
	path string
	log  *logger.Logger

	mu   sync.Mutex
	data File
	now  func() time.Time
}

func emptyFile() File {
	return File{Version: Version, Documents: map[string]Entry{}}
}

// Open loads the cache at path. A missing file yields an empty cache; a
// version mismatch discards the old entries with a warning. Unreadable or
// corrupt files return *Error.
func Open(path string, log *logger.Logger) (*Store, error) {
	s := &Store{path: path, log: log.With("cache"), data: emptyFile(), now: time.Now}

	raw, err := os.ReadFile(path) // #nosec G304 -- configured cache location
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("cache file not found, starting empty", logger.String("path", path))
		return s, nil
	}
	if err != nil {
		return nil, &Error{Op: "read", Path: path, Err: err}
	}

	var loaded File
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return nil, &Error{Op: "decode", Path: path, Err: err}
	}
	if loaded.Version != Version {
		s.log.Warn("cache version mismatch, discarding cached entries",
			logger.String("path", path),
			logger.String("found", loaded.Version),
			logger.String("expected", Version),
			logger.Int("discarded", len(loaded.Documents)))
		return s, nil
	}
	if loaded.Documents == nil {
		loaded.Documents = map[string]Entry{}
	}
	s.data = loaded
	return s, nil
}

// Path returns the cache file location.
func (s *Store) Path() string { return s.path }

// Get returns the entry for key.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data.Documents[key]
	return e, ok
}

// Keys returns every cached key, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data.Documents))
	for k := range s.data.Documents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of cached documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.Documents)
}

// Put stores e under key and persists the cache.
func (s *Store) Put(key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Documents[key] = e
	return s.saveLocked()
}

// Delete removes keys and persists the cache when anything changed.
func (s *Store) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, k := range keys {
		if _, ok := s.data.Documents[k]; ok {
			delete(s.data.Documents, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.saveLocked()
}

// Clear drops every entry and persists the empty cache.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = emptyFile()
	return s.saveLocked()
}

// Save persists the current contents.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	s.data.LastUpdated = s.now().UTC()
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return &Error{Op: "encode", Path: s.path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return &Error{Op: "mkdir", Path: s.path, Err: err}
	}
	if err := safeio.WriteFileAtomic(s.path, raw); err != nil {
		return &Error{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// Stats summarizes the cached outcomes.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Total: len(s.data.Documents), LastUpdated: s.data.LastUpdated, Path: s.path}
	for _, e := range s.data.Documents {
		switch e.ValidationStatus {
		case StatusPassed:
			st.Passed++
		case StatusFailed:
			st.Failed++
		}
		st.TotalErrors += e.ErrorCount
		st.TotalWarnings += e.WarningCount
	}
	return st
}
