package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bublenz/feedpulse/internal/config"
	"github.com/bublenz/feedpulse/internal/feed"
	"github.com/bublenz/feedpulse/internal/models"
	"github.com/bublenz/feedpulse/internal/sources"
	"github.com/bublenz/feedpulse/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service owns the write path of the pipeline: every accepted post goes to
// the durable raw log first, then into the in-memory window, and the window
// snapshot file is re-exported after each change.
type Service struct {
	config  *config.Config
	log     *feed.Log
	window  *feed.Window
	store   storage.StorageInterface
	metrics *Metrics
	mu      sync.RWMutex
}

// Metrics holds ingestion counters
type Metrics struct {
	TotalIngested  int            `json:"total_ingested"`
	LastRun        time.Time      `json:"last_run"`
	LastRunCount   int            `json:"last_run_count"`
	PlatformCounts map[string]int `json:"platform_counts"`
	ErrorCount     int            `json:"error_count"`
}

// PushRequest is the body of POST /ingest. Only Text is required; the rest
// is defaulted server-side.
type PushRequest struct {
	ID        string                 `json:"id"`
	Platform  string                 `json:"platform"`
	AuthorID  string                 `json:"author_id"`
	IsFriend  *bool                  `json:"is_friend"`
	Text      string                 `json:"text"`
	TopicHint string                 `json:"topic_hint"`
	MediaMeta map[string]interface{} `json:"media_meta"`
}

// NewService creates a new ingest service
func NewService(cfg *config.Config, log *feed.Log, window *feed.Window, store storage.StorageInterface) *Service {
	return &Service{
		config: cfg,
		log:    log,
		window: window,
		store:  store,
		metrics: &Metrics{
			PlatformCounts: make(map[string]int),
		},
	}
}

// Normalize validates a push request and fills in server-side defaults.
// The returned error means the request must be rejected without touching
// the log.
func (s *Service) Normalize(req PushRequest, now time.Time) (models.Post, error) {
	if strings.TrimSpace(req.Text) == "" {
		return models.Post{}, fmt.Errorf("text is required")
	}

	post := models.Post{
		ID:         req.ID,
		Platform:   req.Platform,
		AuthorID:   req.AuthorID,
		IsFriend:   req.IsFriend != nil && *req.IsFriend,
		Text:       req.Text,
		ObservedAt: now.UTC(),
		TopicHint:  req.TopicHint,
		MediaMeta:  req.MediaMeta,
	}

	if post.ID == "" {
		post.ID = "loc_" + uuid.NewString()
	}
	if post.Platform == "" {
		post.Platform = "local"
	}

	return post, nil
}

// IngestPost appends one post to the log, adds it to the window, and
// re-exports the window snapshot.
func (s *Service) IngestPost(post models.Post) error {
	if err := s.log.Append(post); err != nil {
		return fmt.Errorf("failed to append post %s: %w", post.ID, err)
	}

	s.window.Add(post)
	s.countPost(post)

	if err := s.ExportWindow(time.Now()); err != nil {
		return fmt.Errorf("failed to export window: %w", err)
	}

	return nil
}

// RunPull fetches recent posts from one source and ingests them. A bad
// record from the provider is skipped with a warning; only a total provider
// failure aborts the run.
func (s *Service) RunPull(ctx context.Context, source sources.Source, since time.Time) (int, error) {
	start := time.Now()
	logrus.Infof("Pulling recent posts from %s (since %s)", source.GetName(), since.UTC().Format(time.RFC3339))

	posts, err := source.FetchRecent(ctx, since)
	if err != nil {
		s.countError()
		return 0, fmt.Errorf("failed to fetch from %s: %w", source.GetName(), err)
	}

	ingested := 0
	for _, post := range posts {
		if post.ID == "" || post.Text == "" {
			logrus.Warnf("Skipping %s record without id or text", source.GetName())
			continue
		}

		if err := s.log.Append(post); err != nil {
			logrus.Errorf("Failed to log post %s: %v", post.ID, err)
			s.countError()
			continue
		}

		s.window.Add(post)
		s.countPost(post)
		ingested++
	}

	if err := s.ExportWindow(time.Now()); err != nil {
		return ingested, fmt.Errorf("failed to export window: %w", err)
	}

	s.finishRun(ingested)
	logrus.Infof("Pull from %s completed in %v: %d posts ingested", source.GetName(), time.Since(start), ingested)
	return ingested, nil
}

// RebuildWindow replays the raw log and resets the window to the posts
// still inside the trailing interval ending at now.
func (s *Service) RebuildWindow(now time.Time) error {
	posts, err := s.log.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to replay raw log: %w", err)
	}

	s.window.Reset(posts, now)
	logrus.Infof("Rebuilt window from raw log: %d of %d posts still current", s.window.Size(), len(posts))
	return nil
}

// ExportWindow writes the current window snapshot as a whole-file replace,
// so the tagger never observes a partial write.
func (s *Service) ExportWindow(now time.Time) error {
	snapshot := s.window.Snapshot(now)
	if snapshot == nil {
		snapshot = []models.Post{}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal window: %w", err)
	}

	return s.store.Store(config.WindowFile, data)
}

// WindowSize returns the current number of posts in the window.
func (s *Service) WindowSize() int {
	return s.window.Size()
}

// WindowSnapshot returns the pruned window contents.
func (s *Service) WindowSnapshot(now time.Time) []models.Post {
	return s.window.Snapshot(now)
}

func (s *Service) countPost(post models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.TotalIngested++
	s.metrics.PlatformCounts[post.Platform]++
}

func (s *Service) countError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.ErrorCount++
}

func (s *Service) finishRun(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.LastRun = time.Now()
	s.metrics.LastRunCount = count
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
