package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bublenz/feedpulse/internal/models"
	"github.com/sirupsen/logrus"
)

// DemoSource loads posts from a static JSON demo file, so the pipeline can
// be exercised end to end without any API credentials.
type DemoSource struct {
	path     string
	platform string
}

type demoPost struct {
	ID        string                 `json:"id"`
	Ts        string                 `json:"ts"`
	AuthorID  string                 `json:"author_id"`
	IsFriend  *bool                  `json:"is_friend"`
	Text      string                 `json:"text"`
	TopicHint string                 `json:"topic_hint"`
	MediaMeta map[string]interface{} `json:"media_meta"`
}

// NewDemoSource creates a demo source reading from path. Platform defaults
// to "demo" when empty.
func NewDemoSource(path, platform string) *DemoSource {
	if platform == "" {
		platform = "demo"
	}
	return &DemoSource{path: path, platform: platform}
}

func (d *DemoSource) GetName() string {
	return "demo"
}

func (d *DemoSource) IsEnabled() bool {
	return d.path != ""
}

// FetchRecent reads the whole demo file; since is ignored, the window
// filter downstream decides what is still current. Posts without a
// timestamp are stamped with the current time.
func (d *DemoSource) FetchRecent(ctx context.Context, since time.Time) ([]models.Post, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read demo file %s: %w", d.path, err)
	}

	var raw []demoPost
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse demo file %s: %w", d.path, err)
	}

	now := time.Now().UTC()
	var posts []models.Post

	for i, item := range raw {
		if item.ID == "" {
			logrus.Warnf("Skipping demo record %d without id", i)
			continue
		}

		observedAt := now
		if item.Ts != "" {
			parsed, err := time.Parse(time.RFC3339, item.Ts)
			if err != nil {
				logrus.Warnf("Skipping demo record %s with bad timestamp: %v", item.ID, err)
				continue
			}
			observedAt = parsed.UTC()
		}

		posts = append(posts, models.Post{
			ID:         item.ID,
			Platform:   d.platform,
			AuthorID:   item.AuthorID,
			IsFriend:   item.IsFriend != nil && *item.IsFriend,
			Text:       item.Text,
			ObservedAt: observedAt,
			TopicHint:  item.TopicHint,
			MediaMeta:  item.MediaMeta,
		})
	}

	return posts, nil
}
