// Package jsonstore is the flat-file record store: one pretty-printed JSON
// array per named collection, whole-collection reads and replaces only.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrMalformed marks a collection file that exists but does not parse. A
// corrupted collection must surface loudly: silently treating it as empty
// would lose its data on the next replace.
var ErrMalformed = errors.New("malformed collection file")

type Store struct {
	dir string
	mu  sync.Mutex
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads the named collection into out, which must be a pointer to a
// slice. A missing file is an empty collection, not an error.
func (s *Store) Load(name string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(name, out)
}

// Replace rewrites the whole collection from v. The write goes through a
// temp file and rename so a crash mid-write cannot truncate the collection.
func (s *Store) Replace(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replace(name, v)
}

// Update runs a read-modify-write cycle on the named collection while
// holding the store lock across both halves: load into out, let mutate
// change it, write it back.
func (s *Store) Update(name string, out any, mutate func() error) error {
	const op = "jsonstore.Store.Update"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(name, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := mutate(); err != nil {
		return err
	}

	return s.replace(name, out)
}

func (s *Store) load(name string, out any) error {
	const op = "jsonstore.Store.Load"

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%s: read %s: %w", op, name, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode %s: %w: %w", op, name, ErrMalformed, err)
	}

	return nil
}

func (s *Store) replace(name string, v any) error {
	const op = "jsonstore.Store.Replace"

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("%s: encode %s: %w", op, name, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+"-*.json")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%s: write %s: %w", op, name, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%s: close %s: %w", op, name, err)
	}

	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%s: rename %s: %w", op, name, err)
	}

	return nil
}
