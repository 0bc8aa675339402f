package tagging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bublenz/feedpulse/internal/config"
	"github.com/bublenz/feedpulse/internal/models"
	"github.com/bublenz/feedpulse/internal/storage"
	"github.com/sirupsen/logrus"
)

// Service runs the feature tagger: a pure one-shot batch transform over the
// current window snapshot. No incremental state is kept between runs; given
// the same window and the same reference clock the output is identical.
type Service struct {
	config  *config.Config
	store   storage.StorageInterface
	archive Archive      // optional, may be nil
	digest  DigestSender // optional, may be nil
}

// Archive keeps timestamped copies of the tagging outputs.
type Archive interface {
	StoreRun(ctx context.Context, stamp, filename string, data []byte) error
}

// DigestSender receives a summary of a completed tagging run.
type DigestSender interface {
	SendSummary(run *models.TagRun) error
}

// NewService creates a new tagging service. archive and digest are optional.
func NewService(cfg *config.Config, store storage.StorageInterface, archive Archive, digest DigestSender) *Service {
	return &Service{
		config:  cfg,
		store:   store,
		archive: archive,
		digest:  digest,
	}
}

// Run reads the window snapshot, computes features and the topic aggregate,
// and writes both output files. now is the reference clock for novelty.
func (s *Service) Run(now time.Time) (*models.TagRun, error) {
	start := time.Now()
	logrus.Info("Starting tagging run")

	posts, err := s.loadWindow()
	if err != nil {
		return nil, err
	}
	posts = s.currentPosts(posts, now)

	features := BuildFeatures(posts, now)
	aggregate := Aggregate(features)

	if err := s.writeOutputs(features, aggregate); err != nil {
		return nil, err
	}

	run := &models.TagRun{
		GeneratedAt: now.UTC(),
		TotalPosts:  len(features),
		Topics:      aggregate,
	}

	if s.archive != nil {
		s.archiveOutputs(now)
	}

	if s.digest != nil {
		if err := s.digest.SendSummary(run); err != nil {
			logrus.Errorf("Failed to send topic digest: %v", err)
		}
	}

	logrus.Infof("Tagging run completed in %v: %d posts tagged", time.Since(start), len(features))
	return run, nil
}

func (s *Service) loadWindow() ([]models.Post, error) {
	data, err := s.store.Retrieve(config.WindowFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read window snapshot: %w", err)
	}

	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse window snapshot: %w", err)
	}

	return posts, nil
}

// currentPosts re-checks the window cutoff against the tagger's own clock.
// A snapshot left on disk by an earlier export can hold posts that have
// since aged out; those never reach the feature table.
func (s *Service) currentPosts(posts []models.Post, now time.Time) []models.Post {
	cutoff := now.Add(-s.config.WindowDuration())

	kept := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if !post.ObservedAt.After(cutoff) {
			logrus.Warnf("Dropping post %s from stale snapshot: aged out of the window", post.ID)
			continue
		}
		kept = append(kept, post)
	}

	return kept
}

func (s *Service) writeOutputs(features []models.FeatureRecord, aggregate map[string]models.TopicStat) error {
	featureData, err := json.MarshalIndent(features, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal feature table: %w", err)
	}
	if err := s.store.Store(config.FeaturesFile, featureData); err != nil {
		return fmt.Errorf("failed to write feature table: %w", err)
	}

	aggregateData, err := json.MarshalIndent(aggregate, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal aggregate: %w", err)
	}
	if err := s.store.Store(config.AggregateFile, aggregateData); err != nil {
		return fmt.Errorf("failed to write aggregate: %w", err)
	}

	return nil
}

// archiveOutputs copies both output files into the archive under the run's
// timestamp. Archive failures are logged, never fatal.
func (s *Service) archiveOutputs(now time.Time) {
	ctx := context.Background()
	stamp := now.UTC().Format("2006-01-02-15-04-05")

	for _, name := range []string{config.FeaturesFile, config.AggregateFile} {
		data, err := s.store.Retrieve(name)
		if err != nil {
			logrus.Errorf("Failed to read %s for archiving: %v", name, err)
			continue
		}
		if err := s.archive.StoreRun(ctx, stamp, name, data); err != nil {
			logrus.Errorf("Failed to archive %s: %v", name, err)
		}
	}
}

// BuildFeatures computes one feature record per post in the window.
func BuildFeatures(posts []models.Post, now time.Time) []models.FeatureRecord {
	features := make([]models.FeatureRecord, 0, len(posts))

	for _, post := range posts {
		isFriend := 0
		if post.IsFriend {
			isFriend = 1
		}

		scores := ScoreSentiment(post.Text)

		features = append(features, models.FeatureRecord{
			PostID:        post.ID,
			Platform:      post.Platform,
			Topic:         ClassifyTopic(post.Text),
			Novelty:       Novelty(post.ObservedAt, now),
			IsFriend:      isFriend,
			PositiveScore: scores.Positive,
			NegativeScore: scores.Negative,
			CompoundScore: scores.Compound,
		})
	}

	return features
}

// Novelty is the recency-decay score 1/(1+hours_since_post). Ages clamp at
// zero, so the result is always in (0,1] and strictly decreasing in age.
func Novelty(observedAt, now time.Time) float64 {
	age := now.Sub(observedAt)
	if age < 0 {
		age = 0
	}
	return 1.0 / (1.0 + age.Hours())
}

// Aggregate sums feature records into per-topic counts and percentages.
// The counts total equals the number of feature records.
func Aggregate(features []models.FeatureRecord) map[string]models.TopicStat {
	counts := make(map[string]int)
	for _, f := range features {
		counts[f.Topic]++
	}

	total := float64(len(features))
	summary := make(map[string]models.TopicStat, len(counts))
	for topic, count := range counts {
		summary[topic] = models.TopicStat{
			Count:   count,
			Percent: float64(count) / total * 100.0,
		}
	}

	return summary
}
