package engine

import (
	"context"

	"learnkit/catalog"
	"learnkit/core"
)

// ProgressStore abstracts persistence of per-user progress records.
//
// Update must execute fn as one atomic read-modify-write for the given user:
// implementations serialize concurrent updates to the same user (per-user
// lock, optimistic transaction, or row lock) so interleaved calls cannot
// lose a write. A record missing from the store is initialized empty before
// fn runs. If fn or the durable write fails, nothing is committed and the
// returned error reflects the failure.
type ProgressStore interface {
	Get(ctx context.Context, user core.UserID) (core.UserProgress, error)
	Update(ctx context.Context, user core.UserID, fn func(*core.UserProgress) error) (core.UserProgress, error)
}

// CourseCatalog is the read-only course and lesson reference lookup.
type CourseCatalog interface {
	Lesson(key core.LessonKey) (catalog.Lesson, error)
	Lessons(courseID string) ([]catalog.Lesson, error)
}
