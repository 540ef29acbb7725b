// Package store implements a flat key-value record store over a directory of
// JSON object files. Every access is a whole-file read-parse-rewrite cycle;
// nothing is cached between calls, and no locking is performed, so concurrent
// writers to the same record race freely.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Record is a single JSON document: a flat mapping of string keys to
// arbitrary JSON values.
type Record map[string]any

// Store handles all file system operations for record files.
type Store struct {
	dir string
}

// New initializes a Store over the given directory, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path of a record file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether a record file exists.
func (s *Store) Exists(name string) bool {
	if validateName(name) != nil {
		return false
	}
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Read reads a record from disk and parses it as a JSON object.
// Returns ErrNotFound if the file is absent and ErrBadRecord if the content
// is not a JSON object.
func (s *Store) Read(name string) (Record, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read record %s: %w", name, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadRecord, name, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s: not a JSON object", ErrBadRecord, name)
	}
	return rec, nil
}

// Write serializes a record and overwrites the file completely. There is no
// partial-write atomicity; a crash mid-write can leave a truncated file.
func (s *Store) Write(name string, rec Record) error {
	if err := validateName(name); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", name, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil { //nolint:gosec // G306: 0o644 is intentional for record files
		return fmt.Errorf("failed to write record %s: %w", name, err)
	}
	return nil
}

// Create writes an empty record. It refuses to overwrite an existing file
// and returns ErrExists instead.
func (s *Store) Create(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	f, err := os.OpenFile(s.Path(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is constructed from the store directory
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrExists, name)
		}
		return fmt.Errorf("failed to create record %s: %w", name, err)
	}
	defer func() {
		_ = f.Close()
	}()
	if _, err := f.WriteString("{}\n"); err != nil {
		return fmt.Errorf("failed to write record %s: %w", name, err)
	}
	return nil
}

// Delete unlinks a record file. Returns ErrNotFound if it is absent.
func (s *Store) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete record %s: %w", name, err)
	}
	return nil
}

// List returns the names of all record files in the store directory, sorted.
// Names listed in exclude are skipped (the merge output, typically).
func (s *Store) List(exclude ...string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list store directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if slices.Contains(exclude, e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// validateName rejects names that would escape the store directory.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return fmt.Errorf("invalid record name %q", name)
	}
	return nil
}
