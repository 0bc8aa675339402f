package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bublenz/feedpulse/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// XSource pulls recent English-language posts from the X (Twitter) v2
// recent search endpoint. Retweets are excluded in the query itself.
type XSource struct {
	bearerToken string
	client      *resty.Client
}

type xSearchResponse struct {
	Data []xTweet `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

type xTweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	AuthorID  string `json:"author_id"`
	CreatedAt string `json:"created_at"`
	Lang      string `json:"lang"`
}

// NewXSource creates a new X source
func NewXSource(bearerToken string) *XSource {
	return &XSource{
		bearerToken: bearerToken,
		client: resty.New().
			SetTimeout(20 * time.Second).
			SetHeader("User-Agent", userAgent),
	}
}

func (x *XSource) GetName() string {
	return "x"
}

func (x *XSource) IsEnabled() bool {
	return x.bearerToken != ""
}

func (x *XSource) FetchRecent(ctx context.Context, since time.Time) ([]models.Post, error) {
	if !x.IsEnabled() {
		logrus.Debug("X source disabled - missing bearer token")
		return nil, nil
	}

	resp, err := x.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+x.bearerToken).
		SetQueryParams(map[string]string{
			"query":        "lang:en -is:retweet",
			"max_results":  "50",
			"tweet.fields": "created_at,author_id,lang",
			"start_time":   since.UTC().Format(time.RFC3339),
		}).
		Get("https://api.twitter.com/2/tweets/search/recent")

	if err != nil {
		return nil, err
	}

	// Rate limited: skip this run rather than block the pipeline
	if resp.StatusCode() == 429 {
		logrus.Warn("X API rate limit hit - skipping this pull")
		return nil, nil
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("x API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp xSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse X response: %w", err)
	}

	var posts []models.Post

	for _, tweet := range searchResp.Data {
		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			logrus.Errorf("Failed to parse X timestamp: %v", err)
			continue
		}

		posts = append(posts, models.Post{
			ID:         tweet.ID,
			Platform:   "x",
			AuthorID:   tweet.AuthorID,
			IsFriend:   false,
			Text:       tweet.Text,
			ObservedAt: createdAt.UTC(),
			MediaMeta:  map[string]interface{}{"lang": tweet.Lang},
		})
	}

	return deduplicatePosts(posts), nil
}
