package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verixa/internal/model"
)

func TestListProducts_AllNewestIsIDOrder(t *testing.T) {
	f := newFixture(t)

	products, err := f.repo.ListProducts(context.Background(), model.AllCategories, model.SortNewest)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, productIDs(products))
}

func TestListProducts_EmptyCategoryMeansAll(t *testing.T) {
	f := newFixture(t)

	products, err := f.repo.ListProducts(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, products, 6)
}

func TestListProducts_Sorting(t *testing.T) {
	tests := []struct {
		name string
		sort model.SortOption
		want []string
	}{
		{"newest", model.SortNewest, []string{"1", "2", "3", "4", "5", "6"}},
		{"price ascending", model.SortPriceLow, []string{"1", "5", "4", "2", "3", "6"}},
		{"price descending", model.SortPriceHigh, []string{"6", "3", "2", "4", "5", "1"}},
		{"unknown falls back", model.SortOption("Best Rated"), []string{"1", "2", "3", "4", "5", "6"}},
	}

	f := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := f.repo.ListProducts(context.Background(), "", tt.sort)
			require.NoError(t, err)
			assert.Equal(t, tt.want, productIDs(products))
		})
	}
}

func TestListProducts_CategoryFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	premium, err := f.repo.ListProducts(ctx, "Premium", model.SortPriceHigh)
	require.NoError(t, err)
	assert.Equal(t, []string{"6", "3"}, productIDs(premium))

	none, err := f.repo.ListProducts(ctx, "Outerwear", model.SortNewest)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListProducts_EqualPricesTieBreakOnID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.UpdateProductPrice(ctx, "5", decimal.NewFromInt(35)))

	products, err := f.repo.ListProducts(ctx, "Basics", model.SortPriceLow)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "5"}, productIDs(products))
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, found, err := f.repo.GetProduct(ctx, "3")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Serenity Linen Blend", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(55)))
	assert.Equal(t, []string{"XS", "S", "M", "L"}, p.Sizes)
	assert.Equal(t, []string{"Sage", "Cream", "Dusty Rose"}, p.Colors)
	assert.True(t, p.Rating.Equal(decimal.RequireFromString("4.7")))
	assert.Equal(t, 56, p.ReviewCount)
	assert.NotEmpty(t, p.Description)
}

func TestGetProduct_Missing(t *testing.T) {
	f := newFixture(t)

	_, found, err := f.repo.GetProduct(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetProduct_InvalidRowIsQueryError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.ExecContext(ctx, `UPDATE products SET images = '[]' WHERE id = '2'`)
	require.NoError(t, err)

	_, _, err = f.repo.GetProduct(ctx, "2")
	require.Error(t, err)
	assert.True(t, model.IsQueryError(err))

	_, err = f.repo.ListProducts(ctx, "", model.SortNewest)
	assert.True(t, model.IsQueryError(err))
}

func TestGetProduct_NoVariantsIsQueryError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.ExecContext(ctx, `UPDATE products SET sizes = '[]' WHERE id = '3'`)
	require.NoError(t, err)

	_, _, err = f.repo.GetProduct(ctx, "3")
	require.Error(t, err)
	assert.True(t, model.IsQueryError(err), "a product nobody can add to the cart must not be served")
}

func TestGetProduct_ClosedEngineIsQueryError(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Close())

	_, _, err := f.repo.GetProduct(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, model.IsQueryError(err))
}

func TestCategories(t *testing.T) {
	f := newFixture(t)

	categories, err := f.repo.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Basics", "Graphic", "Premium", "Vintage"}, categories)
}

func TestUpdateProductPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.UpdateProductPrice(ctx, "1", decimal.RequireFromString("40.00")))
	p, _, err := f.repo.GetProduct(ctx, "1")
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(40)))

	err = f.repo.UpdateProductPrice(ctx, "1", decimal.NewFromInt(-1))
	assert.True(t, model.IsValidationError(err))

	err = f.repo.UpdateProductPrice(ctx, "missing", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateProductPrice_ClosedEngineIsQueryError(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Close())

	err := f.repo.UpdateProductPrice(context.Background(), "1", decimal.NewFromInt(40))
	require.Error(t, err)
	assert.True(t, model.IsQueryError(err))
}
