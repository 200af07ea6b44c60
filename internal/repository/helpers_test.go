package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verixa/internal/catalog"
	"github.com/roach88/verixa/internal/model"
	"github.com/roach88/verixa/internal/order"
	"github.com/roach88/verixa/internal/store"
	"github.com/roach88/verixa/internal/testutil"
)

type fixture struct {
	store *store.Store
	repo  *Repository
}

// newFixture opens a seeded store and a repository with deterministic order
// ids and timestamps.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, store.EnsureSchema(ctx, s))
	products, err := catalog.Default()
	require.NoError(t, err)
	_, err = catalog.EnsureSeed(ctx, s, products)
	require.NoError(t, err)

	orders := order.New(s,
		order.WithIDGenerator(testutil.NewSequenceIDGenerator()),
		order.WithClock(testutil.NewDeterministicClock().Now),
	)
	return &fixture{store: s, repo: New(s, orders, nil)}
}

func line(productID string, qty int, size, color, price string) model.OrderLine {
	return model.OrderLine{
		ProductID:       productID,
		Quantity:        qty,
		SelectedSize:    size,
		SelectedColor:   color,
		PriceAtPurchase: decimal.RequireFromString(price),
	}
}

func placeOrder(t *testing.T, f *fixture, email, total string, items ...model.OrderLine) string {
	t.Helper()
	id, err := f.repo.CreateOrder(context.Background(), model.OrderInput{
		CustomerName:  "Customer " + email,
		CustomerEmail: email,
		TotalAmount:   decimal.RequireFromString(total),
		Items:         items,
	})
	require.NoError(t, err)
	return id
}

func productIDs(products []model.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
