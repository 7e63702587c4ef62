package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/store_api/internal/models"
)

func TestCreateCategory_DuplicateName(t *testing.T) {
	t.Parallel()

	rp := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, rp.CreateCategory(ctx, &models.Category{Name: "Electronics"}))

	err := rp.CreateCategory(ctx, &models.Category{Name: "Electronics"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateBrands_RollsBackOnDuplicate(t *testing.T) {
	t.Parallel()

	rp := newTestRepo(t)
	ctx := context.Background()

	_, err := rp.CreateBrands(ctx, []models.Brand{{Name: "Acme"}})
	require.NoError(t, err)

	_, err = rp.CreateBrands(ctx, []models.Brand{{Name: "Globex"}, {Name: "Acme"}})
	require.ErrorIs(t, err, ErrConflict)

	// The batch is atomic, so Globex must not have landed either.
	brands, err := rp.GetBrands(ctx)
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, "Acme", brands[0].Name)
}

func TestSeries_ScopedToBrand(t *testing.T) {
	t.Parallel()

	rp := newTestRepo(t)
	ctx := context.Background()

	brands, err := rp.CreateBrands(ctx, []models.Brand{{Name: "Acme"}, {Name: "Globex"}})
	require.NoError(t, err)

	s := models.Series{Name: "Classic", BrandID: brands[0].ID}
	require.NoError(t, rp.CreateSeries(ctx, &s))

	got, err := rp.GetSeries(ctx, brands[0].ID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Classic", got.Name)

	// Same series id under the wrong brand is not found.
	_, err = rp.GetSeries(ctx, brands[1].ID, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, rp.DeleteSeries(ctx, brands[1].ID, s.ID), ErrNotFound)
	require.NoError(t, rp.DeleteSeries(ctx, brands[0].ID, s.ID))
}

func TestProduct_TopicsRoundTrip(t *testing.T) {
	t.Parallel()

	rp := newTestRepo(t)
	ctx := context.Background()

	cat := models.Category{Name: "Electronics"}
	require.NoError(t, rp.CreateCategory(ctx, &cat))
	topic := models.Topic{Name: "Phones", CategoryID: cat.ID}
	require.NoError(t, rp.CreateTopic(ctx, &topic))

	brands, err := rp.CreateBrands(ctx, []models.Brand{{Name: "Acme"}})
	require.NoError(t, err)
	series := models.Series{Name: "Classic", BrandID: brands[0].ID}
	require.NoError(t, rp.CreateSeries(ctx, &series))

	p := models.Product{
		Name:          "Acme Phone",
		Description:   "A phone",
		Price:         199.99,
		StockQuantity: 5,
		SeriesID:      series.ID,
		SpecificAttributes: map[string]any{
			"color": "black",
		},
	}
	require.NoError(t, rp.CreateProduct(ctx, &p, []models.Topic{topic}))

	got, err := rp.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Topics, 1)
	assert.Equal(t, "Phones", got.Topics[0].Name)
	assert.Equal(t, "black", got.SpecificAttributes["color"])

	require.NoError(t, rp.DeleteProduct(ctx, p.ID))
	_, err = rp.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetProducts_Pagination(t *testing.T) {
	t.Parallel()

	rp := newTestRepo(t)
	ctx := context.Background()

	brands, err := rp.CreateBrands(ctx, []models.Brand{{Name: "Acme"}})
	require.NoError(t, err)
	series := models.Series{Name: "Classic", BrandID: brands[0].ID}
	require.NoError(t, rp.CreateSeries(ctx, &series))

	names := []string{"alpha", "beta", "gamma"}
	for _, name := range names {
		require.NoError(t, rp.CreateProduct(ctx, &models.Product{
			Name:     name,
			Price:    1,
			SeriesID: series.ID,
		}, nil))
	}

	total, items, err := rp.GetProducts(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
}

func TestDeleteCategory_NotFound(t *testing.T) {
	t.Parallel()

	rp := newTestRepo(t)

	assert.ErrorIs(t, rp.DeleteCategory(context.Background(), uuid.New()), ErrNotFound)
}
