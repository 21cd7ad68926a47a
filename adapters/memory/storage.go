// Package memory provides a concurrent in-memory ProgressStore.
package memory

import (
	"context"
	"sync"

	"learnkit/core"
)

// Store keeps one record per user. Each record carries its own mutex, so
// updates to the same user serialize while different users proceed in
// parallel.
type Store struct {
	users sync.Map // map[core.UserID]*record
}

type record struct {
	mu       sync.Mutex
	progress core.UserProgress
}

func New() *Store { return &Store{} }

func (s *Store) getOrCreate(user core.UserID) *record {
	if v, ok := s.users.Load(user); ok {
		return v.(*record)
	}
	rec := &record{progress: core.NewUserProgress(user)}
	actual, _ := s.users.LoadOrStore(user, rec)
	return actual.(*record)
}

func (s *Store) Get(_ context.Context, user core.UserID) (core.UserProgress, error) {
	v, ok := s.users.Load(user)
	if !ok {
		return core.UserProgress{}, &core.NotFoundError{Resource: "user", Key: string(user)}
	}
	rec := v.(*record)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.progress.Clone(), nil
}

// Update runs fn on a working copy under the record lock and swaps it in
// only when fn succeeds, so a failed update commits nothing.
func (s *Store) Update(_ context.Context, user core.UserID, fn func(*core.UserProgress) error) (core.UserProgress, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	work := rec.progress.Clone()
	if err := fn(&work); err != nil {
		return core.UserProgress{}, err
	}
	rec.progress = work
	return work.Clone(), nil
}
