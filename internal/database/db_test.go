package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"twc-crawler/internal/models"
)

func TestSchemaSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.db")

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, NewSlugRepository(db).EnqueueSlugs([]QueuedSlug{{Slug: "keep-me", Category: "beauty"}}))
	require.NoError(t, db.Close())

	// Reopening must keep queued work, not recreate the schema.
	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()

	pending, err := NewSlugRepository(db).GetPendingSlugs(0)
	require.NoError(t, err)
	require.Equal(t, []string{"keep-me"}, pending)
}

func TestProductRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	p := models.Product{
		ProductID:   "88001",
		Name:        "Ultra Repair Balm 75g",
		LineName:    "Ultra Repair",
		BrandName:   "First Aid Beauty",
		Description: "Rich balm for very dry skin.",
		Images:      "https://cdn.example.com/1.jpg|https://cdn.example.com/2.jpg",
		Barcode:     "812323022019",
		Price:       "32.50",
		SizeVolume:  "75g",
		Ingredients: "Aqua, Butyrospermum Parkii Butter",
		SkinConcern: "dry skin, eczema",
		SourceURL:   "https://terrywhitechemmart.com.au/shop/product/ultra-repair-balm",
	}
	require.NoError(t, repo.InsertProduct("ultra-repair-balm", p))
	// Second insert for the same slug is ignored.
	require.NoError(t, repo.InsertProduct("ultra-repair-balm", p))

	count, err := repo.CountProducts()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	products, err := repo.GetAllProducts()
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, p, products[0])
}

func TestSessionValidityFlow(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)

	require.NoError(t, repo.AddSessions([]string{"device-a", "device-b"}))
	require.NoError(t, repo.AddSession("device-a")) // duplicate, ignored

	count, err := repo.GetValidSessionCount()
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, repo.IncrementSessionFailure("device-a"))
	require.NoError(t, repo.InvalidateSession("device-a"))

	valid, err := repo.GetValidSessions()
	require.NoError(t, err)
	require.Equal(t, []string{"device-b"}, valid)

	require.NoError(t, repo.RevalidateSession("device-a"))
	count, err = repo.GetValidSessionCount()
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestCategoryCursorFlow(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)

	require.NoError(t, repo.SeedCategories([]string{"beauty", "skin-care"}))
	// Reseeding keeps cursor positions.
	require.NoError(t, repo.AdvancePage("beauty", 24))
	require.NoError(t, repo.SeedCategories([]string{"beauty", "skin-care"}))

	active, err := repo.GetActiveCategories()
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "beauty", active[0].Slug)
	require.Equal(t, 2, active[0].NextPage)
	require.Equal(t, 24, active[0].FetchedCount)

	require.NoError(t, repo.MarkCategoryExhausted("beauty"))
	active, err = repo.GetActiveCategories()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "skin-care", active[0].Slug)

	count, err := repo.CountActiveCategories()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// A reset reopens exhausted categories at page 1 but keeps the
	// lifetime fetched count.
	require.NoError(t, repo.ResetCategories())
	active, err = repo.GetActiveCategories()
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "beauty", active[0].Slug)
	require.Equal(t, 1, active[0].NextPage)
	require.Equal(t, 24, active[0].FetchedCount)
}
