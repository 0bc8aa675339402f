package feed

import (
	"sync"
	"time"

	"github.com/bublenz/feedpulse/internal/models"
)

// Window holds the trailing slice of recent posts. It is a derived view
// over the raw log and fully replaceable; Reset rebuilds it from scratch.
// A post exactly at the cutoff boundary is excluded.
type Window struct {
	duration time.Duration
	mu       sync.Mutex
	posts    []models.Post
}

// NewWindow creates an empty window covering the trailing duration.
func NewWindow(duration time.Duration) *Window {
	return &Window{duration: duration}
}

// Contains reports whether observedAt falls inside the window ending at now.
func (w *Window) Contains(observedAt, now time.Time) bool {
	return observedAt.After(now.Add(-w.duration))
}

// Add inserts a post and drops everything that has aged out.
func (w *Window) Add(post models.Post) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.posts = append(w.posts, post)
	w.pruneLocked(time.Now())
}

// Prune drops posts that have aged out relative to now.
func (w *Window) Prune(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
}

func (w *Window) pruneLocked(now time.Time) {
	kept := w.posts[:0]
	for _, post := range w.posts {
		if w.Contains(post.ObservedAt, now) {
			kept = append(kept, post)
		}
	}
	w.posts = kept
}

// Snapshot prunes against now and returns a copy of the remaining posts.
func (w *Window) Snapshot(now time.Time) []models.Post {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(now)

	out := make([]models.Post, len(w.posts))
	copy(out, w.posts)
	return out
}

// Reset replaces the window contents with the posts from a replayed log
// that still fall inside the window ending at now.
func (w *Window) Reset(posts []models.Post, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.posts = nil
	for _, post := range posts {
		if w.Contains(post.ObservedAt, now) {
			w.posts = append(w.posts, post)
		}
	}
}

// Size returns the current number of posts without pruning.
func (w *Window) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.posts)
}
