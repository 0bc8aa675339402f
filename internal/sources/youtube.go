package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bublenz/feedpulse/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// youtubeSeeds are the query seeds the session feed samples from. The seed
// is carried along as a topic hint for the tagger.
var youtubeSeeds = []string{"education", "technology", "music", "news"}

// YouTubeSource pulls recently published videos from the YouTube Data API.
type YouTubeSource struct {
	apiKey string
	client *resty.Client
}

type youTubeSearchResponse struct {
	Items []youTubeVideo `json:"items"`
}

type youTubeVideo struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelID    string `json:"channelId"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
}

// NewYouTubeSource creates a new YouTube source
func NewYouTubeSource(apiKey string) *YouTubeSource {
	return &YouTubeSource{
		apiKey: apiKey,
		client: resty.New().
			SetTimeout(20 * time.Second),
	}
}

func (y *YouTubeSource) GetName() string {
	return "youtube"
}

func (y *YouTubeSource) IsEnabled() bool {
	return y.apiKey != ""
}

func (y *YouTubeSource) FetchRecent(ctx context.Context, since time.Time) ([]models.Post, error) {
	if !y.IsEnabled() {
		logrus.Debug("YouTube source disabled - missing API key")
		return nil, nil
	}

	var allPosts []models.Post

	for _, seed := range youtubeSeeds {
		posts, err := y.searchSeed(ctx, seed, since)
		if err != nil {
			logrus.Errorf("Failed to search YouTube for seed '%s': %v", seed, err)
			continue
		}
		allPosts = append(allPosts, posts...)
	}

	return deduplicatePosts(allPosts), nil
}

func (y *YouTubeSource) searchSeed(ctx context.Context, seed string, since time.Time) ([]models.Post, error) {
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part":           "snippet",
			"type":           "video",
			"order":          "date",
			"q":              seed,
			"maxResults":     "20",
			"publishedAfter": since.UTC().Format(time.RFC3339),
			"key":            y.apiKey,
		}).
		Get("https://www.googleapis.com/youtube/v3/search")

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("youtube API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp youTubeSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse YouTube response: %w", err)
	}

	var posts []models.Post

	for _, video := range searchResp.Items {
		publishedAt, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt)
		if err != nil {
			logrus.Errorf("Failed to parse YouTube timestamp: %v", err)
			continue
		}

		text := strings.TrimSpace(video.Snippet.Title + "\n" + video.Snippet.Description)

		posts = append(posts, models.Post{
			ID:         video.ID.VideoID,
			Platform:   "youtube",
			AuthorID:   video.Snippet.ChannelID,
			IsFriend:   false,
			Text:       text,
			ObservedAt: publishedAt.UTC(),
			TopicHint:  seed,
			MediaMeta:  map[string]interface{}{"channelTitle": video.Snippet.ChannelTitle},
		})
	}

	return posts, nil
}
