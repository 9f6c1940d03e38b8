package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelglobe/pkg/db"
	"travelglobe/pkg/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	s := NewSQLiteStore(d)
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	testTimeline(t, ctx, store)
	testUpsert(t, ctx, store)
	testYears(t, ctx, store)
	testDeleteYear(t, ctx, store)
	testState(t, ctx, store)
}

func testTimeline(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("Timeline", func(t *testing.T) {
		visit := time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)
		entries := []*model.TravelTimelineEntry{
			{Year: 2024, SequenceOrder: 2, Latitude: 35.6762, Longitude: 139.6503, LocationName: strPtr("Tokyo")},
			{Year: 2024, SequenceOrder: 0, Latitude: 40.7128, Longitude: -74.0060, LocationName: strPtr("New York"), VisitDate: visit, PhotoCount: 12},
			{Year: 2024, SequenceOrder: 1, Latitude: 48.8566, Longitude: 2.3522, CityID: strPtr("par"), AlbumCount: 2},
		}
		for _, e := range entries {
			require.NoError(t, store.SaveEntry(ctx, e))
			assert.NotEmpty(t, e.ID, "SaveEntry should assign an ID")
		}

		got, err := store.ListTimeline(ctx, 2024)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, "New York", got[0].Name())
		assert.Equal(t, 12, got[0].PhotoCount)
		assert.True(t, visit.Equal(got[0].VisitDate), "visit date round trip: %v", got[0].VisitDate)

		assert.Nil(t, got[1].LocationName)
		require.NotNil(t, got[1].CityID)
		assert.Equal(t, "par", *got[1].CityID)
		assert.Equal(t, 2, got[1].AlbumCount)
		assert.True(t, got[1].VisitDate.IsZero())

		assert.Equal(t, "Tokyo", got[2].Name())
	})
}

func testUpsert(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("Upsert", func(t *testing.T) {
		e := &model.TravelTimelineEntry{ID: "fixed-id", Year: 2022, Latitude: 1, Longitude: 2}
		require.NoError(t, store.SaveEntry(ctx, e))

		e.Latitude = 10
		require.NoError(t, store.SaveEntry(ctx, e))

		got, err := store.ListTimeline(ctx, 2022)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "fixed-id", got[0].ID)
		assert.Equal(t, 10.0, got[0].Latitude)
	})
}

func testYears(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("Years", func(t *testing.T) {
		require.NoError(t, store.SaveEntry(ctx, &model.TravelTimelineEntry{Year: 2023, Latitude: 51.5, Longitude: -0.12}))

		years, err := store.ListYears(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{2022, 2023, 2024}, years)
	})
}

func testDeleteYear(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("DeleteYear", func(t *testing.T) {
		require.NoError(t, store.DeleteYear(ctx, 2023))

		got, err := store.ListTimeline(ctx, 2023)
		require.NoError(t, err)
		assert.Empty(t, got)

		remaining, err := store.ListTimeline(ctx, 2024)
		require.NoError(t, err)
		assert.Len(t, remaining, 3)
	})
}

func testState(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("State", func(t *testing.T) {
		_, found := store.GetState(ctx, "missing")
		assert.False(t, found)

		require.NoError(t, store.SetState(ctx, "seed_mtime", "v1"))
		val, found := store.GetState(ctx, "seed_mtime")
		assert.True(t, found)
		assert.Equal(t, "v1", val)

		require.NoError(t, store.DeleteState(ctx, "seed_mtime"))
		_, found = store.GetState(ctx, "seed_mtime")
		assert.False(t, found)
	})
}
