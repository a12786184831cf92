package orchestrator

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"twc-crawler/internal/database"
	"twc-crawler/internal/models"
)

func TestDedupeSlugsKeepsFirstSeenOrder(t *testing.T) {
	in := []database.QueuedSlug{
		{Slug: "panadol-500mg", Category: "pain-relief"},
		{Slug: "cerave-cleanser", Category: "skin-care"},
		{Slug: "panadol-500mg", Category: "cold-and-flu"},
		{Slug: "fish-oil-1000mg", Category: "vitamins"},
		{Slug: "cerave-cleanser", Category: "skin-care"},
	}

	out := dedupeSlugs(in)

	assert.Len(t, out, 3)
	assert.Equal(t, "panadol-500mg", out[0].Slug)
	assert.Equal(t, "cerave-cleanser", out[1].Slug)
	assert.Equal(t, "fish-oil-1000mg", out[2].Slug)
	// The first sighting decides the category
	assert.Equal(t, "pain-relief", out[0].Category)
}

func TestDedupeSlugsEmpty(t *testing.T) {
	assert.Empty(t, dedupeSlugs(nil))
}

func TestMergeSessions(t *testing.T) {
	existing := []string{"dev-a", "dev-b"}
	minted := []string{"dev-b", "dev-c", "dev-c", "dev-d"}

	merged := mergeSessions(existing, minted)

	assert.Equal(t, []string{"dev-a", "dev-b", "dev-c", "dev-d"}, merged)
}

func TestMergeSessionsIntoEmpty(t *testing.T) {
	merged := mergeSessions(nil, []string{"dev-a"})
	assert.Equal(t, []string{"dev-a"}, merged)
}

func TestBatchStats(t *testing.T) {
	attempted, complete, incomplete, failed := batchStats(nil)
	assert.Zero(t, attempted)
	assert.Zero(t, complete)
	assert.Zero(t, incomplete)
	assert.Zero(t, failed)

	pc := &models.ProductCrawler{}
	atomic.StoreInt32(&pc.Stats.Attempted, 7)
	atomic.StoreInt32(&pc.Stats.Complete, 4)
	atomic.StoreInt32(&pc.Stats.Incomplete, 2)
	atomic.StoreInt32(&pc.Stats.Failed, 1)

	attempted, complete, incomplete, failed = batchStats(pc)
	assert.Equal(t, int32(7), attempted)
	assert.Equal(t, int32(4), complete)
	assert.Equal(t, int32(2), incomplete)
	assert.Equal(t, int32(1), failed)
}
