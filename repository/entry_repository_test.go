package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platelog/database"
	"platelog/models"
)

func newTestRepo(t *testing.T) *EntryRepository {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	return New(db)
}

func entryAt(ts int64, calories float64) models.FoodEntry {
	return models.FoodEntry{
		Timestamp: ts,
		ImageURI:  "file:///photos/meal.jpg",
		Nutrition: models.NutritionData{Calories: calories},
	}
}

func TestInsertAssignsIDAndTimestamp(t *testing.T) {
	repo := newTestRepo(t)

	entry := entryAt(0, 500)
	before := time.Now().UnixMilli()
	id, err := repo.Insert(&entry)
	require.NoError(t, err)

	assert.NotZero(t, id)
	assert.GreaterOrEqual(t, entry.Timestamp, before)
	assert.LessOrEqual(t, entry.Timestamp, time.Now().UnixMilli())
}

func TestInsertKeepsExplicitTimestamp(t *testing.T) {
	repo := newTestRepo(t)

	entry := entryAt(1700000000000, 300)
	_, err := repo.Insert(&entry)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), entry.Timestamp)
}

func TestAllNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	for _, ts := range []int64{2000, 1000, 3000} {
		e := entryAt(ts, 100)
		_, err := repo.Insert(&e)
		require.NoError(t, err)
	}

	entries, err := repo.All()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(3000), entries[0].Timestamp)
	assert.Equal(t, int64(2000), entries[1].Timestamp)
	assert.Equal(t, int64(1000), entries[2].Timestamp)
}

func TestByIDAbsent(t *testing.T) {
	repo := newTestRepo(t)

	entry, err := repo.ByID(999)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestByID(t *testing.T) {
	repo := newTestRepo(t)
	e := entryAt(1000, 450)
	id, err := repo.Insert(&e)
	require.NoError(t, err)

	got, err := repo.ByID(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 450.0, got.Nutrition.Calories)
}

func TestByRange(t *testing.T) {
	repo := newTestRepo(t)
	for _, ts := range []int64{1000, 2000, 3000, 4000} {
		e := entryAt(ts, 100)
		_, err := repo.Insert(&e)
		require.NoError(t, err)
	}

	entries, err := repo.ByRange(2000, 3000)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(3000), entries[0].Timestamp)
	assert.Equal(t, int64(2000), entries[1].Timestamp)
}

func TestByDay(t *testing.T) {
	repo := newTestRepo(t)
	morning := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC).UnixMilli()
	evening := time.Date(2025, 3, 10, 21, 30, 0, 0, time.UTC).UnixMilli()
	nextDay := time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC).UnixMilli()
	for _, ts := range []int64{morning, evening, nextDay} {
		e := entryAt(ts, 100)
		_, err := repo.Insert(&e)
		require.NoError(t, err)
	}

	noon := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC).UnixMilli()
	entries, err := repo.ByDay(noon)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, evening, entries[0].Timestamp)
	assert.Equal(t, morning, entries[1].Timestamp)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	e := entryAt(1000, 100)
	id, err := repo.Insert(&e)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(id))

	got, err := repo.ByID(id)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Absent id is a no-op.
	assert.NoError(t, repo.Delete(id))
}

func TestDeleteAll(t *testing.T) {
	repo := newTestRepo(t)
	for i := 0; i < 3; i++ {
		e := entryAt(int64(1000*(i+1)), 100)
		_, err := repo.Insert(&e)
		require.NoError(t, err)
	}

	require.NoError(t, repo.DeleteAll())

	entries, err := repo.All()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func receiveSnapshot(t *testing.T, ch <-chan []models.FoodEntry) []models.FoodEntry {
	t.Helper()
	select {
	case entries, ok := <-ch:
		require.True(t, ok, "snapshot channel closed early")
		return entries
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestWatchAllDeliversSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := repo.WatchAll(ctx)
	assert.Empty(t, receiveSnapshot(t, ch))

	e := entryAt(1000, 220)
	_, err := repo.Insert(&e)
	require.NoError(t, err)

	snapshot := receiveSnapshot(t, ch)
	require.Len(t, snapshot, 1)
	assert.Equal(t, 220.0, snapshot[0].Nutrition.Calories)

	require.NoError(t, repo.DeleteAll())
	assert.Empty(t, receiveSnapshot(t, ch))
}

func TestWatchDayIgnoresOtherDays(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC).UnixMilli()
	ch := repo.WatchDay(ctx, day)
	assert.Empty(t, receiveSnapshot(t, ch))

	other := entryAt(time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC).UnixMilli(), 100)
	_, err := repo.Insert(&other)
	require.NoError(t, err)
	// The mutation triggers a refresh, but the entry is outside the day.
	assert.Empty(t, receiveSnapshot(t, ch))

	same := entryAt(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC).UnixMilli(), 300)
	_, err = repo.Insert(&same)
	require.NoError(t, err)

	snapshot := receiveSnapshot(t, ch)
	require.Len(t, snapshot, 1)
	assert.Equal(t, 300.0, snapshot[0].Nutrition.Calories)
}

func TestWatchClosesOnCancel(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch := repo.WatchAll(ctx)
	receiveSnapshot(t, ch)
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("snapshot channel not closed after cancel")
		}
	}
}
