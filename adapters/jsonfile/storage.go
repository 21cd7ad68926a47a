// Package jsonfile persists progress records to a single JSON file.
// Suitable for demos and small deployments.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"learnkit/core"
)

type Store struct {
	path string
	mu   sync.Mutex
	// in-memory cache for speed
	data map[core.UserID]core.UserProgress
}

func New(path string) (*Store, error) {
	s := &Store{path: path, data: map[core.UserID]core.UserProgress{}}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, &core.PersistenceError{Op: "load", Err: err}
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var raw map[string]core.UserProgress
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		s.data[core.UserID(k)] = v
	}
	return nil
}

func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	raw := make(map[string]core.UserProgress, len(s.data))
	for k, v := range s.data {
		raw[string(k)] = v
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Get(_ context.Context, user core.UserID) (core.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data[user]
	if !ok {
		return core.UserProgress{}, &core.NotFoundError{Resource: "user", Key: string(user)}
	}
	return p.Clone(), nil
}

// Update runs fn on a working copy and only swaps the cache and file in
// when both fn and the durable write succeed.
func (s *Store) Update(_ context.Context, user core.UserID, fn func(*core.UserProgress) error) (core.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data[user]
	if !ok {
		current = core.NewUserProgress(user)
	}
	work := current.Clone()
	if err := fn(&work); err != nil {
		return core.UserProgress{}, err
	}

	prev, hadPrev := s.data[user]
	s.data[user] = work
	if err := s.persist(); err != nil {
		// roll the cache back so a failed write commits nothing
		if hadPrev {
			s.data[user] = prev
		} else {
			delete(s.data, user)
		}
		return core.UserProgress{}, &core.PersistenceError{Op: "write", Err: err}
	}
	return work.Clone(), nil
}
