package order

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verixa/internal/catalog"
	"github.com/roach88/verixa/internal/model"
	"github.com/roach88/verixa/internal/store"
)

// newSeededStore creates a file-backed store holding the default catalog.
func newSeededStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, store.EnsureSchema(ctx, s))
	products, err := catalog.Default()
	require.NoError(t, err)
	_, err = catalog.EnsureSeed(ctx, s, products)
	require.NoError(t, err)
	return s
}

func countRows(t *testing.T, s *store.Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

// validInput returns a two-line order for products 1 and 2.
func validInput() model.OrderInput {
	return model.OrderInput{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		TotalAmount:   decimal.RequireFromString("118.00"),
		Items: []model.OrderLine{
			{ProductID: "1", Quantity: 2, SelectedSize: "M", SelectedColor: "White", PriceAtPurchase: decimal.NewFromInt(35)},
			{ProductID: "2", Quantity: 1, SelectedSize: "L", SelectedColor: "Sand", PriceAtPurchase: decimal.NewFromInt(48)},
		},
	}
}

var errInjected = errors.New("injected failure")

// faultyEngine fails the nth exec whose SQL contains match, inside
// transactions only.
type faultyEngine struct {
	store.Engine
	match string
	nth   int
}

func (f *faultyEngine) InTx(ctx context.Context, fn func(q store.Querier) error) error {
	return f.Engine.InTx(ctx, func(q store.Querier) error {
		return fn(&faultyQuerier{Querier: q, engine: f})
	})
}

type faultyQuerier struct {
	store.Querier
	engine *faultyEngine
	seen   int
}

func (q *faultyQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.Contains(query, q.engine.match) {
		q.seen++
		if q.seen == q.engine.nth {
			return nil, errInjected
		}
	}
	return q.Querier.ExecContext(ctx, query, args...)
}
