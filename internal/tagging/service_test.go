package tagging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bublenz/feedpulse/internal/config"
	"github.com/bublenz/feedpulse/internal/models"
	"github.com/bublenz/feedpulse/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDigest is a mock implementation of the digest sender
type MockDigest struct {
	mock.Mock
}

func (m *MockDigest) SendSummary(run *models.TagRun) error {
	args := m.Called(run)
	return args.Error(0)
}

// MockArchive is a mock implementation of the run archive
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) StoreRun(ctx context.Context, stamp, filename string, data []byte) error {
	args := m.Called(ctx, stamp, filename, data)
	return args.Error(0)
}

func writeWindow(t *testing.T, store storage.StorageInterface, posts []models.Post) {
	t.Helper()
	data, err := json.Marshal(posts)
	require.NoError(t, err)
	require.NoError(t, store.Store(config.WindowFile, data))
}

func newTestStore(t *testing.T) *storage.LocalStorage {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestService_Run(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	writeWindow(t, store, []models.Post{
		{ID: "p1", Platform: "demo", IsFriend: true, Text: "studying for the exam", ObservedAt: now.Add(-10 * time.Minute)},
		{ID: "p2", Platform: "x", Text: "new AI software release", ObservedAt: now.Add(-20 * time.Minute)},
		{ID: "p3", Platform: "reddit", Text: "had a sandwich", ObservedAt: now.Add(-5 * time.Minute)},
	})

	service := NewService(&config.Config{WindowMinutes: 30}, store, nil, nil)

	run, err := service.Run(now)
	require.NoError(t, err)

	assert.Equal(t, 3, run.TotalPosts)
	assert.Equal(t, 1, run.Topics["education"].Count)
	assert.Equal(t, 1, run.Topics["technology"].Count)
	assert.Equal(t, 1, run.Topics["other"].Count)

	// Feature table on disk matches the run
	data, err := store.Retrieve(config.FeaturesFile)
	require.NoError(t, err)

	var features []models.FeatureRecord
	require.NoError(t, json.Unmarshal(data, &features))
	require.Len(t, features, 3)

	assert.Equal(t, "p1", features[0].PostID)
	assert.Equal(t, 1, features[0].IsFriend)
	assert.Equal(t, 0, features[1].IsFriend)

	for _, f := range features {
		assert.Greater(t, f.Novelty, 0.0)
		assert.LessOrEqual(t, f.Novelty, 1.0)
	}
}

func TestService_RunDropsAgedSnapshotPosts(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// A snapshot left behind by an earlier export still holds aged posts
	writeWindow(t, store, []models.Post{
		{ID: "stale", Platform: "demo", Text: "breaking news report", ObservedAt: now.Add(-2 * time.Hour)},
		{ID: "boundary", Platform: "demo", Text: "football match score", ObservedAt: now.Add(-30 * time.Minute)},
		{ID: "fresh", Platform: "demo", Text: "music concert tonight", ObservedAt: now.Add(-10 * time.Minute)},
	})

	service := NewService(&config.Config{WindowMinutes: 30}, store, nil, nil)

	run, err := service.Run(now)
	require.NoError(t, err)

	assert.Equal(t, 1, run.TotalPosts)
	assert.Equal(t, 1, run.Topics["entertainment"].Count)
	assert.NotContains(t, run.Topics, "news")
	assert.NotContains(t, run.Topics, "sports")

	data, err := store.Retrieve(config.FeaturesFile)
	require.NoError(t, err)

	var features []models.FeatureRecord
	require.NoError(t, json.Unmarshal(data, &features))
	require.Len(t, features, 1)
	assert.Equal(t, "fresh", features[0].PostID)
}

func TestService_RunIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	writeWindow(t, store, []models.Post{
		{ID: "p1", Platform: "demo", Text: "election results and government policy", ObservedAt: now.Add(-3 * time.Minute)},
		{ID: "p2", Platform: "demo", Text: "space research at nasa", ObservedAt: now.Add(-8 * time.Minute)},
	})

	service := NewService(&config.Config{WindowMinutes: 30}, store, nil, nil)

	_, err := service.Run(now)
	require.NoError(t, err)
	first, err := store.Retrieve(config.FeaturesFile)
	require.NoError(t, err)
	firstAgg, err := store.Retrieve(config.AggregateFile)
	require.NoError(t, err)

	_, err = service.Run(now)
	require.NoError(t, err)
	second, err := store.Retrieve(config.FeaturesFile)
	require.NoError(t, err)
	secondAgg, err := store.Retrieve(config.AggregateFile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstAgg, secondAgg)
}

func TestService_RunEmptyWindow(t *testing.T) {
	store := newTestStore(t)
	writeWindow(t, store, []models.Post{})

	service := NewService(&config.Config{WindowMinutes: 30}, store, nil, nil)

	run, err := service.Run(time.Now())
	require.NoError(t, err)

	assert.Equal(t, 0, run.TotalPosts)
	assert.Empty(t, run.Topics)

	data, err := store.Retrieve(config.FeaturesFile)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestService_RunSendsDigest(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	writeWindow(t, store, []models.Post{
		{ID: "p1", Platform: "demo", Text: "stock market update", ObservedAt: now.Add(-time.Minute)},
	})

	mockDigest := &MockDigest{}
	mockDigest.On("SendSummary", mock.AnythingOfType("*models.TagRun")).Return(nil)

	service := NewService(&config.Config{WindowMinutes: 30}, store, nil, mockDigest)

	_, err := service.Run(now)
	require.NoError(t, err)

	mockDigest.AssertCalled(t, "SendSummary", mock.AnythingOfType("*models.TagRun"))
}

func TestService_RunArchivesOutputsUnderRunStamp(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	writeWindow(t, store, []models.Post{
		{ID: "p1", Platform: "demo", Text: "stock market update", ObservedAt: now.Add(-time.Minute)},
	})

	mockArchive := &MockArchive{}
	mockArchive.On("StoreRun", mock.Anything, "2025-06-01-12-00-00", config.FeaturesFile, mock.Anything).Return(nil)
	mockArchive.On("StoreRun", mock.Anything, "2025-06-01-12-00-00", config.AggregateFile, mock.Anything).Return(nil)

	service := NewService(&config.Config{WindowMinutes: 30}, store, mockArchive, nil)

	_, err := service.Run(now)
	require.NoError(t, err)

	mockArchive.AssertNumberOfCalls(t, "StoreRun", 2)
}

func TestAggregate_TotalEqualsRecordCount(t *testing.T) {
	features := []models.FeatureRecord{
		{PostID: "1", Topic: "news"},
		{PostID: "2", Topic: "news"},
		{PostID: "3", Topic: "sports"},
		{PostID: "4", Topic: "other"},
	}

	summary := Aggregate(features)

	total := 0
	percent := 0.0
	for _, stat := range summary {
		total += stat.Count
		percent += stat.Percent
	}

	assert.Equal(t, len(features), total)
	assert.InDelta(t, 100.0, percent, 1e-9)
	assert.Equal(t, 2, summary["news"].Count)
	assert.InDelta(t, 50.0, summary["news"].Percent, 1e-9)
}

func TestBuildFeatures_OneRecordPerPost(t *testing.T) {
	now := time.Now().UTC()
	posts := []models.Post{
		{ID: "a", Platform: "demo", Text: "music concert tonight", ObservedAt: now.Add(-time.Minute)},
		{ID: "b", Platform: "demo", Text: "doctor visit at the hospital", ObservedAt: now.Add(-2 * time.Minute)},
	}

	features := BuildFeatures(posts, now)

	require.Len(t, features, 2)
	assert.Equal(t, "a", features[0].PostID)
	assert.Equal(t, "entertainment", features[0].Topic)
	assert.Equal(t, "b", features[1].PostID)
	assert.Equal(t, "health", features[1].Topic)
}
