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

// RedditSource pulls recent posts from the Reddit listings the session
// feed is built from (/best and /r/all/new).
type RedditSource struct {
	clientID     string
	clientSecret string
	username     string
	password     string
	client       *resty.Client
	accessToken  string
}

type redditAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditListingResponse struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Selftext  string  `json:"selftext"`
	Author    string  `json:"author"`
	Subreddit string  `json:"subreddit"`
	Created   float64 `json:"created_utc"`
}

// NewRedditSource creates a new Reddit source using the password grant.
func NewRedditSource(clientID, clientSecret, username, password string) *RedditSource {
	return &RedditSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		username:     username,
		password:     password,
		client:       resty.New().SetTimeout(20 * time.Second),
	}
}

func (r *RedditSource) GetName() string {
	return "reddit"
}

func (r *RedditSource) IsEnabled() bool {
	return r.clientID != "" && r.clientSecret != "" && r.username != "" && r.password != ""
}

func (r *RedditSource) FetchRecent(ctx context.Context, since time.Time) ([]models.Post, error) {
	if !r.IsEnabled() {
		logrus.Debug("Reddit source disabled - missing credentials")
		return nil, nil
	}

	if err := r.authenticate(ctx); err != nil {
		return nil, fmt.Errorf("reddit authentication failed: %w", err)
	}

	var allPosts []models.Post

	for _, path := range []string{"/best", "/r/all/new"} {
		posts, err := r.fetchListing(ctx, path)
		if err != nil {
			logrus.Errorf("Failed to fetch Reddit listing %s: %v", path, err)
			continue
		}
		allPosts = append(allPosts, posts...)

		// Keep a pause between listing calls to stay under rate limits
		select {
		case <-ctx.Done():
			return allPosts, ctx.Err()
		case <-time.After(800 * time.Millisecond):
		}
	}

	return deduplicatePosts(allPosts), nil
}

func (r *RedditSource) authenticate(ctx context.Context) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", userAgent).
		SetBasicAuth(r.clientID, r.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "password",
			"username":   r.username,
			"password":   r.password,
		}).
		Post("https://www.reddit.com/api/v1/access_token")

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("reddit auth returned status %d", resp.StatusCode())
	}

	var authResp redditAuthResponse
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		return err
	}
	if authResp.AccessToken == "" {
		return fmt.Errorf("reddit auth returned no access token")
	}

	r.accessToken = authResp.AccessToken
	return nil
}

func (r *RedditSource) fetchListing(ctx context.Context, path string) ([]models.Post, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "bearer "+r.accessToken).
		SetHeader("User-Agent", userAgent).
		SetQueryParam("limit", "50").
		Get("https://oauth.reddit.com" + path)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	var listing redditListingResponse
	if err := json.Unmarshal(resp.Body(), &listing); err != nil {
		return nil, err
	}

	var posts []models.Post

	for _, child := range listing.Data.Children {
		item := child.Data
		text := strings.TrimSpace(item.Title + "\n" + item.Selftext)

		posts = append(posts, models.Post{
			ID:         item.ID,
			Platform:   "reddit",
			AuthorID:   item.Author,
			IsFriend:   false,
			Text:       text,
			ObservedAt: time.Unix(int64(item.Created), 0).UTC(),
			MediaMeta:  map[string]interface{}{"subreddit": item.Subreddit},
		})
	}

	return posts, nil
}
