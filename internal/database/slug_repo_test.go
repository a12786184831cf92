package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEnqueueSlugsDeduplicates(t *testing.T) {
	db := newTestDB(t)
	repo := NewSlugRepository(db)

	err := repo.EnqueueSlugs([]QueuedSlug{
		{Slug: "vitamin-c-serum", Category: "skin-care"},
		{Slug: "daily-moisturiser", Category: "skin-care"},
		{Slug: "vitamin-c-serum", Category: "beauty"}, // duplicate slug
		{Slug: "   ", Category: "beauty"},             // blank, dropped
	})
	require.NoError(t, err)

	pending, err := repo.GetPendingSlugs(0)
	require.NoError(t, err)
	require.Equal(t, []string{"vitamin-c-serum", "daily-moisturiser"}, pending)

	stats, err := repo.GetSlugStats()
	require.NoError(t, err)
	require.Equal(t, 2, stats["total"])
	require.Equal(t, 2, stats["pending"])
}

func TestSlugStatusLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewSlugRepository(db)

	require.NoError(t, repo.EnqueueSlugs([]QueuedSlug{
		{Slug: "a", Category: "beauty"},
		{Slug: "b", Category: "beauty"},
		{Slug: "c", Category: "beauty"},
		{Slug: "d", Category: "beauty"},
	}))

	require.NoError(t, repo.UpdateSlugStatus("a", SlugStatusComplete))
	require.NoError(t, repo.MarkSlugIncomplete("b", "Barcode (EAN/UPC)"))
	require.NoError(t, repo.UpdateSlugStatus("c", SlugStatusFailed))
	require.NoError(t, repo.IncrementRetryCount("c", "timeout"))

	stats, err := repo.GetSlugStats()
	require.NoError(t, err)
	require.Equal(t, 1, stats["complete"])
	require.Equal(t, 1, stats["incomplete"])
	require.Equal(t, 1, stats["failed"])
	require.Equal(t, 1, stats["pending"])

	// Only pending and failed slugs are retried, least retried first.
	remaining, err := repo.GetRemainingSlugs()
	require.NoError(t, err)
	require.Equal(t, []string{"d", "c"}, remaining)

	count, err := repo.CountRemainingSlugs()
	require.NoError(t, err)
	require.Equal(t, 2, count)

	incomplete, err := repo.GetSlugsByStatus(SlugStatusIncomplete)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, incomplete)
}

func TestGetPendingSlugsRespectsLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewSlugRepository(db)

	require.NoError(t, repo.EnqueueSlugs([]QueuedSlug{
		{Slug: "a", Category: "x"},
		{Slug: "b", Category: "x"},
		{Slug: "c", Category: "x"},
	}))

	pending, err := repo.GetPendingSlugs(2)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, pending)
}
