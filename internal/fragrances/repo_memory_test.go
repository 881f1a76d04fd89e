package fragrances

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []Fragrance {
	return []Fragrance{
		{ID: "dior__sauvage", Brand: "Dior", Name: "Sauvage", Gender: "men", ScentFamily: "fresh", Intensity: "strong", SampleAvailable: true, SamplePriceUSD: 20, PriorityScore: 40},
		{ID: "chanel__chance", Brand: "Chanel", Name: "Chance", Gender: "women", ScentFamily: "floral", Intensity: "moderate", SampleAvailable: true, SamplePriceUSD: 20, PriorityScore: 35},
		{ID: "acqua-di-parma__colonia", Brand: "Acqua di Parma", Name: "Colonia", Gender: "unisex", ScentFamily: "fresh", Intensity: "light", SampleAvailable: true, SamplePriceUSD: 16, PriorityScore: 30},
		{ID: "glossier__you", Brand: "Glossier", Name: "You", Gender: "women", ScentFamily: "fresh", Intensity: "light", SampleAvailable: false, SamplePriceUSD: 15, PriorityScore: 10},
	}
}

func TestMemorySearchFiltersAndPages(t *testing.T) {
	repo := NewMemoryRepo(testCatalog()...)

	items, total, err := repo.Search(context.Background(), Filter{ScentFamily: "fresh", Gender: "women", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "acqua-di-parma__colonia", items[0].ID)

	items, total, err = repo.Search(context.Background(), Filter{ScentFamily: "fresh", Gender: "women", SampleOnly: true, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "acqua-di-parma__colonia", items[0].ID)

	items, total, err = repo.Search(context.Background(), Filter{Query: "CHAN", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "chanel__chance", items[0].ID)

	items, total, err = repo.Search(context.Background(), Filter{Limit: 2, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, items, 1)
}

func TestMemoryRecommendByQuizRanksFamilyMatchesFirst(t *testing.T) {
	repo := NewMemoryRepo(testCatalog()...)

	rows, err := repo.RecommendByQuiz(context.Background(), RPCParams{ScentFamily: "fresh", Gender: "women", Intensity: "light", Limit: 5})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.NotEqual(t, "dior__sauvage", row.FragranceID, "men-only fragrance must be filtered out")
	}
	assert.Equal(t, "fresh", rows[0].ScentFamily)
	assert.Equal(t, "floral", rows[2].ScentFamily)
	assert.LessOrEqual(t, rows[0].MatchScore, 1.0)
	assert.Greater(t, rows[0].MatchScore, rows[2].MatchScore)
}

func TestMemoryGetAndUpsert(t *testing.T) {
	repo := NewMemoryRepo()
	_, err := repo.GetByID(context.Background(), "dior__sauvage")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := repo.Upsert(context.Background(), testCatalog())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	f, err := repo.GetByID(context.Background(), "dior__sauvage")
	require.NoError(t, err)
	assert.Equal(t, "Sauvage", f.Name)
}
