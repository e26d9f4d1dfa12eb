package position

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/dshills/cursorkeep/internal/logging"
)

// Store defaults.
const (
	// DefaultCap is the default number of records kept per file.
	DefaultCap = 10

	// DefaultSizeBudget is the serialized size above which Save trims.
	DefaultSizeBudget = 1 << 20

	// trimThreshold is the number of files above which a budget trim also
	// drops whole files.
	trimThreshold = 100

	// trimKeep is the number of most recently used files kept by that drop.
	trimKeep = 50
)

// SaveResult describes a completed save.
type SaveResult struct {
	Path    string
	Bytes   int
	Files   int
	Trimmed bool
}

// Option configures a Store.
type Option func(*Store)

// WithCap sets the per-file history cap. Values below 1 are ignored.
func WithCap(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.cap = n
		}
	}
}

// WithSizeBudget sets the serialized size that triggers trimming on save.
// Zero disables the budget.
func WithSizeBudget(bytes int) Option {
	return func(s *Store) {
		if bytes >= 0 {
			s.budget = bytes
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store is the in-memory position map and its JSON mirror on disk.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	path    string
	cap     int
	budget  int
	entries map[string][]Record
	logger  *logging.Logger
}

// NewStore creates an empty store backed by path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		cap:     DefaultCap,
		budget:  DefaultSizeBudget,
		entries: make(map[string][]Record),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the storage file path.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// SetPath changes the storage file. The in-memory map is left untouched;
// call Load to read the new file.
func (s *Store) SetPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
}

// Cap returns the per-file history cap.
func (s *Store) Cap() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cap
}

// SetCap changes the per-file history cap and trims existing histories.
func (s *Store) SetCap(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cap = n
	for path, recs := range s.entries {
		if len(recs) > n {
			s.entries[path] = recs[:n:n]
		}
	}
}

// Load replaces the in-memory map with the storage file's contents.
// A missing file yields an empty store. A corrupt file is logged and
// also yields an empty store. Other read errors are returned and leave the
// store empty.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string][]Record)

	if s.path == "" {
		return ErrNoStorage
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("no position file at %s, starting empty", s.path)
		return nil
	}
	if err != nil {
		return &StoreError{Op: "load", Path: s.path, Err: err}
	}

	res, err := decode(data)
	if err != nil {
		s.logger.Error("failed to load positions from %s, resetting: %v", s.path, err)
		return nil
	}
	if res.skipped > 0 {
		s.logger.Warn("skipped %d unreadable entries in %s", res.skipped, s.path)
	}

	for path, recs := range res.entries {
		if len(recs) > s.cap {
			recs = recs[:s.cap:s.cap]
		}
		s.entries[path] = recs
	}

	s.logger.Info("loaded %d file positions", len(s.entries))
	return nil
}

// Save writes the store to disk, trimming first when the serialized form
// exceeds the size budget.
func (s *Store) Save() (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := SaveResult{Path: s.path}
	if s.path == "" {
		return res, ErrNoStorage
	}

	data, err := encode(s.entries)
	if err != nil {
		return res, &StoreError{Op: "save", Path: s.path, Err: err}
	}

	if s.budget > 0 && len(data) > s.budget {
		before := len(s.entries)
		s.trimLocked()
		res.Trimmed = true
		s.logger.Warn("positions exceeded %d bytes, trimmed %d files to %d", s.budget, before, len(s.entries))

		if data, err = encode(s.entries); err != nil {
			return res, &StoreError{Op: "save", Path: s.path, Err: err}
		}
	}

	if err := writeFile(s.path, data); err != nil {
		return res, &StoreError{Op: "save", Path: s.path, Err: err}
	}

	res.Bytes = len(data)
	res.Files = len(s.entries)
	s.logger.Debug("saved positions to %s (%d bytes) for %d files", s.path, res.Bytes, res.Files)
	return res, nil
}

// trimLocked caps every history and, past trimThreshold files, keeps only
// the trimKeep files with the most recent records.
func (s *Store) trimLocked() {
	for path, recs := range s.entries {
		sortNewestFirst(recs)
		if len(recs) > s.cap {
			s.entries[path] = recs[:s.cap:s.cap]
		}
	}

	if len(s.entries) <= trimThreshold {
		return
	}

	paths := make([]string, 0, len(s.entries))
	for path := range s.entries {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		ti, tj := newest(s.entries[paths[i]]), newest(s.entries[paths[j]])
		if ti != tj {
			return ti > tj
		}
		return paths[i] < paths[j]
	})

	kept := make(map[string][]Record, trimKeep)
	for _, path := range paths[:trimKeep] {
		kept[path] = s.entries[path]
	}
	s.entries = kept
}

// Update records a new position for path, newest first, dropping the
// oldest records beyond the cap. Paths must be valid UTF-8 so they survive
// the JSON file unchanged.
func (s *Store) Update(path string, rec Record) error {
	if path == "" || !utf8.ValidString(path) {
		return ErrInvalidPath
	}
	if !rec.Valid() {
		return ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.entries[path]
	n := len(old) + 1
	if n > s.cap {
		n = s.cap
	}
	recs := make([]Record, 0, n)
	recs = append(recs, rec)
	recs = append(recs, old[:n-1]...)
	s.entries[path] = recs
	return nil
}

// Lookup returns the newest record for path.
func (s *Store) Lookup(path string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.entries[path]
	if len(recs) == 0 {
		return Record{}, false
	}
	return recs[0], true
}

// History returns a copy of the records for path, newest first.
func (s *Store) History(path string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.entries[path]
	if len(recs) == 0 {
		return nil
	}
	out := make([]Record, len(recs))
	copy(out, recs)
	return out
}

// Forget removes all records for path.
func (s *Store) Forget(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[path]; !ok {
		return false
	}
	delete(s.entries, path)
	return true
}

// Clear empties the in-memory map. It does not touch the file.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]Record)
}

// Len returns the number of tracked files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Paths returns the tracked file paths in sorted order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.entries))
	for path := range s.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// CountTracked returns how many of paths have a stored position.
func (s *Store) CountTracked(paths []string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(paths))
	n := 0
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		if len(s.entries[p]) > 0 {
			n++
		}
	}
	return n
}

// FileSize returns the size of the storage file, or 0 if it does not exist.
func (s *Store) FileSize() (int64, error) {
	path := s.Path()
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, &StoreError{Op: "stat", Path: path, Err: err}
	}
	return info.Size(), nil
}

// writeFile writes data through a temporary file in the same directory and
// renames it into place.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
