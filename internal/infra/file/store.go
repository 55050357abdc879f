// Package file stores each collection as a JSON file in a data directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ecoclick-api/internal/infra/lock"
)

const (
	countersFile = ".counters.json"
	countersKey  = "\x00counters"
)

var emptyCollection = []byte("[]\n")

// Store implements app.RecordStore on top of <dir>/<collection>.json files.
// Access is serialized per collection inside one process; other processes writing the
// same directory are not coordinated.
type Store struct {
	dir   string
	locks lock.Keyed
}

// NewStore creates the data directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("file store: data dir not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Load returns the file contents. A missing file is created holding an empty array and read as nil.
func (s *Store) Load(_ context.Context, collection string) ([]byte, error) {
	path, err := s.path(collection)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(collection)
	defer unlock()

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		if err := s.writeAtomic(path, emptyCollection); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (s *Store) Save(_ context.Context, collection string, data []byte) error {
	path, err := s.path(collection)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(collection)
	defer unlock()
	return s.writeAtomic(path, data)
}

func (s *Store) Modify(_ context.Context, collection string, fn func([]byte) ([]byte, error)) error {
	path, err := s.path(collection)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(collection)
	defer unlock()

	current, err := readFile(path)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.writeAtomic(path, next)
}

// NextID keeps one counter per collection in a hidden counters file.
func (s *Store) NextID(_ context.Context, collection string, floor int64) (int64, error) {
	unlock := s.locks.Lock(countersKey)
	defer unlock()

	path := filepath.Join(s.dir, countersFile)
	raw, err := readFile(path)
	if err != nil {
		return 0, err
	}
	counters := map[string]int64{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &counters); err != nil {
			return 0, fmt.Errorf("decode %s: %w", countersFile, err)
		}
	}

	next := counters[collection]
	if floor > next {
		next = floor
	}
	next++
	counters[collection] = next

	data, err := json.MarshalIndent(counters, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := s.writeAtomic(path, append(data, '\n')); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) path(collection string) (string, error) {
	if collection == "" || strings.ContainsAny(collection, `/\`) || strings.HasPrefix(collection, ".") {
		return "", fmt.Errorf("invalid collection name %q", collection)
	}
	return filepath.Join(s.dir, collection+".json"), nil
}

// writeAtomic writes to a temp file in the same directory and renames it over path.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return data, nil
}
