package services

import (
	"testing"
	"time"

	"supertavern-core/internal/apperrors"
	"supertavern-core/internal/models"
	"supertavern-core/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSummaryStore(t *testing.T) *SummaryStore {
	t.Helper()
	docStore, err := storage.New(t.TempDir(), time.Minute)
	require.NoError(t, err)
	store, err := NewSummaryStore(docStore)
	require.NoError(t, err)
	return store
}

func storedSummaryFixture() *models.CompressionSummary {
	return &models.CompressionSummary{
		OriginalCount:    20,
		CompressedCount:  10,
		CompressionRatio: 0.5,
		Timestamp:        "2024-01-01T00:00:00.000Z",
		KeyPoints: []models.KeyPoint{
			{Speaker: "Alice", Content: "Where is the crown?", Importance: 149},
		},
	}
}

func TestAppendAndExpandRoundTrip(t *testing.T) {
	store := newTestSummaryStore(t)

	originals := []models.Message{
		{Speaker: "Alice", Text: "Where is the crown?"},
		{Speaker: "You", Text: "Hidden in the cellar"},
	}
	entry, err := store.Append("c1", storedSummaryFixture(), 500, originals)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 500, entry.TokensSaved)

	restored, err := store.Expand("c1", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, originals, restored)
}

func TestAppendAssignsUniqueIDs(t *testing.T) {
	store := newTestSummaryStore(t)

	originals := []models.Message{{Speaker: "Alice", Text: "hi"}}
	first, err := store.Append("c1", storedSummaryFixture(), 100, originals)
	require.NoError(t, err)
	second, err := store.Append("c1", storedSummaryFixture(), 200, originals)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAppendRequiresSummary(t *testing.T) {
	store := newTestSummaryStore(t)

	_, err := store.Append("c1", nil, 0, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestExpandMissing(t *testing.T) {
	store := newTestSummaryStore(t)

	_, err := store.Expand("absent-chat", "any")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	entry, err := store.Append("c1", storedSummaryFixture(), 100, []models.Message{{Speaker: "A", Text: "x"}})
	require.NoError(t, err)

	_, err = store.Expand("c1", "wrong-id")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	// Entries stored without originals cannot be expanded
	bare, err := store.Append("c1", storedSummaryFixture(), 100, nil)
	require.NoError(t, err)
	_, err = store.Expand("c1", bare.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	// The expandable entry still works alongside the bare one
	_, err = store.Expand("c1", entry.ID)
	require.NoError(t, err)
}

func TestStatsAggregation(t *testing.T) {
	store := newTestSummaryStore(t)

	stats, err := store.Stats("absent-chat")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalCompressions)
	assert.Empty(t, stats.CompressionHistory)

	_, err = store.Append("c1", storedSummaryFixture(), 500, nil)
	require.NoError(t, err)
	second := storedSummaryFixture()
	second.OriginalCount = 30
	second.CompressedCount = 9
	second.CompressionRatio = 0.3
	second.Timestamp = "2024-01-02T00:00:00.000Z"
	_, err = store.Append("c1", second, 1050, nil)
	require.NoError(t, err)

	stats, err = store.Stats("c1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCompressions)
	assert.Equal(t, 50, stats.TotalMessagesCompressed)
	assert.Equal(t, 1550, stats.TotalTokensSaved)
	require.Len(t, stats.CompressionHistory, 2)
	assert.Equal(t, models.CompressionHistoryEntry{
		Timestamp:       "2024-01-02T00:00:00.000Z",
		OriginalCount:   30,
		CompressedCount: 9,
		Ratio:           0.3,
	}, stats.CompressionHistory[1])
}
