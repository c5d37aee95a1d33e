package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-risk/internal/config"
	"github.com/sells-group/review-risk/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func samplePlace() model.PlaceInfo {
	score := 4.2
	return model.PlaceInfo{
		PlaceID:      "ChIJ-noodle",
		Title:        "Noodle House",
		TotalScore:   &score,
		ReviewsCount: 120,
		ReviewsDistribution: model.Distribution{
			model.OneStar: 8, model.TwoStar: 4, model.FiveStar: 90,
		},
		Reviews: []model.RawReview{
			{"stars": 5, "text": "好吃", "publishedAtDate": "2025-01-02T03:04:05.000Z", "reviewerId": "a"},
			{"stars": 1, "text": "很髒", "publishedAtDate": "2025-02-02T03:04:05.000Z", "reviewerId": "b"},
		},
	}
}

func TestSQLite_GetPlace_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	place, err := st.GetPlace(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestSQLite_SaveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SavePlace(ctx, "ChIJ-noodle", samplePlace()))

	got, err := st.GetPlace(ctx, "ChIJ-noodle")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "ChIJ-noodle", got.PlaceID)
	assert.Equal(t, "Noodle House", got.Title)
	require.NotNil(t, got.TotalScore)
	assert.InDelta(t, 4.2, *got.TotalScore, 1e-9)
	assert.Equal(t, 120, got.ReviewsCount)
	assert.Equal(t, 8, got.ReviewsDistribution.Count(model.OneStar))
	assert.Equal(t, 90, got.ReviewsDistribution.Count(model.FiveStar))

	require.Len(t, got.Reviews, 2)
	// JSON round trip turns numbers into float64.
	assert.Equal(t, float64(5), got.Reviews[0]["stars"])
	assert.Equal(t, "好吃", got.Reviews[0]["text"])
	assert.Equal(t, "b", got.Reviews[1]["reviewerId"])
}

func TestSQLite_SaveReplacesReviews(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SavePlace(ctx, "p1", samplePlace()))

	updated := samplePlace()
	updated.Title = "Noodle House (new)"
	updated.TotalScore = nil
	updated.Reviews = updated.Reviews[:1]
	require.NoError(t, st.SavePlace(ctx, "p1", updated))

	got, err := st.GetPlace(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Noodle House (new)", got.Title)
	assert.Nil(t, got.TotalScore)
	assert.Len(t, got.Reviews, 1)
}

func TestSQLite_SaveNoReviews(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	p := samplePlace()
	p.Reviews = nil
	require.NoError(t, st.SavePlace(ctx, "p-empty", p))

	got, err := st.GetPlace(ctx, "p-empty")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Reviews)
	assert.NotNil(t, got.Reviews)
}

func TestSQLite_PlacesAreIsolated(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SavePlace(ctx, "a", samplePlace()))
	other := samplePlace()
	other.Reviews = other.Reviews[1:]
	require.NoError(t, st.SavePlace(ctx, "b", other))

	a, err := st.GetPlace(ctx, "a")
	require.NoError(t, err)
	b, err := st.GetPlace(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, a.Reviews, 2)
	assert.Len(t, b.Reviews, 1)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, st.Ping(context.Background()))
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	require.NoError(t, st.SavePlace(ctx, "p1", samplePlace()))
	got, err := st.GetPlace(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Noodle House", got.Title)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mongo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
