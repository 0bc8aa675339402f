package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bublenz/feedpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedditSource_GetName(t *testing.T) {
	source := NewRedditSource("id", "secret", "user", "pass")
	assert.Equal(t, "reddit", source.GetName())
}

func TestRedditSource_IsEnabled(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		secret   string
		username string
		password string
		expected bool
	}{
		{
			name:     "All credentials provided",
			clientID: "id", secret: "secret", username: "user", password: "pass",
			expected: true,
		},
		{
			name:   "Missing client ID",
			secret: "secret", username: "user", password: "pass",
			expected: false,
		},
		{
			name:     "Missing password",
			clientID: "id", secret: "secret", username: "user",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewRedditSource(tt.clientID, tt.secret, tt.username, tt.password)
			assert.Equal(t, tt.expected, source.IsEnabled())
		})
	}
}

func TestXSource_IsEnabled(t *testing.T) {
	assert.True(t, NewXSource("token").IsEnabled())
	assert.False(t, NewXSource("").IsEnabled())
}

func TestXSource_GetName(t *testing.T) {
	assert.Equal(t, "x", NewXSource("token").GetName())
}

func TestYouTubeSource_IsEnabled(t *testing.T) {
	assert.True(t, NewYouTubeSource("key").IsEnabled())
	assert.False(t, NewYouTubeSource("").IsEnabled())
}

func TestDisabledSourcesReturnNothing(t *testing.T) {
	ctx := context.Background()
	since := time.Now().Add(-30 * time.Minute)

	for _, source := range []Source{
		NewRedditSource("", "", "", ""),
		NewXSource(""),
		NewYouTubeSource(""),
	} {
		posts, err := source.FetchRecent(ctx, since)
		assert.NoError(t, err, source.GetName())
		assert.Empty(t, posts, source.GetName())
	}
}

func TestDemoSource_FetchRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.json")
	payload := `[
		{"id":"d1","ts":"2025-06-01T12:00:00Z","author_id":"u1","is_friend":true,"text":"study for the exam","topic_hint":"education"},
		{"id":"d2","text":"no timestamp"},
		{"id":"","text":"missing id"},
		{"id":"d3","ts":"not-a-time","text":"bad timestamp"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	source := NewDemoSource(path, "")
	assert.Equal(t, "demo", source.GetName())
	assert.True(t, source.IsEnabled())

	posts, err := source.FetchRecent(context.Background(), time.Time{})
	require.NoError(t, err)

	// d1 and d2 survive; the unidentified and unparseable records are skipped
	require.Len(t, posts, 2)

	assert.Equal(t, "d1", posts[0].ID)
	assert.Equal(t, "demo", posts[0].Platform)
	assert.True(t, posts[0].IsFriend)
	assert.Equal(t, "education", posts[0].TopicHint)
	assert.True(t, posts[0].ObservedAt.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))

	assert.Equal(t, "d2", posts[1].ID)
	assert.False(t, posts[1].IsFriend)
	assert.WithinDuration(t, time.Now().UTC(), posts[1].ObservedAt, 5*time.Second)
}

func TestDemoSource_PlatformOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"d1","text":"hi"}]`), 0o644))

	source := NewDemoSource(path, "instagram")

	posts, err := source.FetchRecent(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "instagram", posts[0].Platform)
}

func TestDemoSource_MissingFile(t *testing.T) {
	source := NewDemoSource(filepath.Join(t.TempDir(), "nope.json"), "")

	_, err := source.FetchRecent(context.Background(), time.Time{})
	assert.Error(t, err)
}

func TestDeduplicatePosts(t *testing.T) {
	posts := []models.Post{
		{ID: "a", Text: "first"},
		{ID: "b", Text: "second"},
		{ID: "a", Text: "duplicate"},
	}

	unique := deduplicatePosts(posts)

	require.Len(t, unique, 2)
	assert.Equal(t, "first", unique[0].Text)
	assert.Equal(t, "second", unique[1].Text)
}
