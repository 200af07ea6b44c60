package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verixa/internal/model"
)

func TestCreateOrder_TwoItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := placeOrder(t, f, "ada@example.com", "125.00",
		line("1", 2, "M", "White", "35.00"),
		line("3", 1, "S", "Sage", "55.00"),
	)
	assert.Regexp(t, regexp.MustCompile(`^ORD-[A-Z0-9]{9}$`), id)

	items, err := f.repo.ListOrderItems(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].PriceAtPurchase.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, "3", items[1].ProductID)
	assert.True(t, items[1].PriceAtPurchase.Equal(decimal.NewFromInt(55)))
	for _, it := range items {
		assert.Equal(t, id, it.OrderID)
	}

	o, found, err := f.repo.GetOrder(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.StatusConfirmed, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(125)))
	assert.False(t, o.UserID.Valid)
	assert.Nil(t, o.ShippingAddress)
}

func TestCreateOrder_PriceSnapshotSurvivesReprice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The cart captured 35.00; the catalog moves to 40.00 before checkout.
	require.NoError(t, f.repo.UpdateProductPrice(ctx, "1", decimal.NewFromInt(40)))
	id := placeOrder(t, f, "ada@example.com", "35.00", line("1", 1, "M", "White", "35.00"))

	items, err := f.repo.ListOrderItems(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "35.00", items[0].PriceAtPurchase.StringFixed(2))
}

func TestOrderItems_ReferenceExistingOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placeOrder(t, f, "a@example.com", "35.00", line("1", 1, "M", "White", "35.00"))
	placeOrder(t, f, "b@example.com", "113.00",
		line("2", 1, "M", "Charcoal", "48.00"),
		line("6", 1, "L", "Indigo", "65.00"),
	)

	var orphans int
	err := f.store.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM order_items oi
		WHERE (SELECT COUNT(*) FROM orders o WHERE o.id = oi.order_id) <> 1
	`).Scan(&orphans)
	require.NoError(t, err)
	assert.Equal(t, 0, orphans)
}

func TestGetOrder_Missing(t *testing.T) {
	f := newFixture(t)

	_, found, err := f.repo.GetOrder(context.Background(), "ORD-NOPE00000")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListOrders_NewestFirstWithLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := placeOrder(t, f, "a@example.com", "35.00", line("1", 1, "M", "White", "35.00"))
	second := placeOrder(t, f, "b@example.com", "48.00", line("2", 1, "M", "Sand", "48.00"))
	third := placeOrder(t, f, "c@example.com", "55.00", line("3", 1, "M", "Cream", "55.00"))

	orders, err := f.repo.ListOrders(ctx, 0)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []string{third, second, first}, []string{orders[0].ID, orders[1].ID, orders[2].ID})

	limited, err := f.repo.ListOrders(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, third, limited[0].ID)
}

func TestListOrdersForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := uuid.MustParse("0190a5b2-7c1e-7000-8000-0000000000aa")
	mine, err := f.repo.CreateOrder(ctx, model.OrderInput{
		CustomerName:  "Grace",
		CustomerEmail: "grace@example.com",
		TotalAmount:   decimal.NewFromInt(65),
		Owner:         &model.Owner{ID: owner, Email: "grace@example.com"},
		Items:         []model.OrderLine{line("6", 1, "M", "Indigo", "65.00")},
	})
	require.NoError(t, err)
	placeOrder(t, f, "anon@example.com", "35.00", line("1", 1, "M", "White", "35.00"))

	orders, err := f.repo.ListOrdersForUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, mine, orders[0].ID)
	assert.True(t, orders[0].UserID.Valid)
	assert.Equal(t, owner, orders[0].UserID.UUID)

	none, err := f.repo.ListOrdersForUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := placeOrder(t, f, "a@example.com", "35.00", line("1", 1, "M", "White", "35.00"))

	require.NoError(t, f.repo.UpdateOrderStatus(ctx, id, model.StatusProcessing))
	require.NoError(t, f.repo.UpdateOrderStatus(ctx, id, model.StatusShipped))

	err := f.repo.UpdateOrderStatus(ctx, id, model.StatusConfirmed)
	assert.True(t, model.IsValidationError(err), "moving backwards must be rejected")

	require.NoError(t, f.repo.UpdateOrderStatus(ctx, id, model.StatusCancelled))
	err = f.repo.UpdateOrderStatus(ctx, id, model.StatusDelivered)
	assert.True(t, model.IsValidationError(err), "cancelled is terminal")

	o, _, err := f.repo.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, o.Status)

	err = f.repo.UpdateOrderStatus(ctx, "ORD-MISSING00", model.StatusShipped)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.False(t, model.IsQueryError(err))
}

func TestUpdateOrderStatus_EngineFailureIsQueryError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := placeOrder(t, f, "a@example.com", "35.00", line("1", 1, "M", "White", "35.00"))
	require.NoError(t, f.store.Close())

	err := f.repo.UpdateOrderStatus(ctx, id, model.StatusProcessing)
	require.Error(t, err)
	assert.True(t, model.IsQueryError(err))
}

func TestUpdateOrderStatus_CorruptStatusIsQueryError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := placeOrder(t, f, "a@example.com", "35.00", line("1", 1, "M", "White", "35.00"))
	_, err := f.store.ExecContext(ctx, `UPDATE orders SET status = 'lost' WHERE id = ?`, id)
	require.NoError(t, err)

	err = f.repo.UpdateOrderStatus(ctx, id, model.StatusProcessing)
	assert.True(t, model.IsQueryError(err))
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalOrders)
	assert.True(t, empty.TotalRevenue.IsZero())
	assert.Equal(t, 6, empty.TotalProducts)

	placeOrder(t, f, "a@example.com", "35.10", line("1", 1, "M", "White", "35.10"))
	placeOrder(t, f, "a@example.com", "48.20", line("2", 1, "M", "Sand", "48.20"))
	placeOrder(t, f, "b@example.com", "55.00", line("3", 1, "M", "Cream", "55.00"))

	stats, err := f.repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, "138.30", stats.TotalRevenue.StringFixed(2))
	assert.Equal(t, 2, stats.TotalCustomers)
	assert.Equal(t, 6, stats.TotalProducts)
}

func TestListCustomers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placeOrder(t, f, "a@example.com", "35.00", line("1", 1, "M", "White", "35.00"))
	placeOrder(t, f, "b@example.com", "120.00", line("6", 1, "M", "Indigo", "65.00"), line("3", 1, "M", "Sage", "55.00"))
	placeOrder(t, f, "a@example.com", "48.00", line("2", 1, "M", "Sand", "48.00"))

	customers, err := f.repo.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)

	assert.Equal(t, "b@example.com", customers[0].Email)
	assert.Equal(t, 1, customers[0].Orders)
	assert.Equal(t, "120.00", customers[0].TotalSpent.StringFixed(2))

	assert.Equal(t, "a@example.com", customers[1].Email)
	assert.Equal(t, 2, customers[1].Orders)
	assert.Equal(t, "83.00", customers[1].TotalSpent.StringFixed(2))
	assert.True(t, customers[1].LastOrder.After(customers[0].LastOrder))
}
