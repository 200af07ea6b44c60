package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/roach88/verixa/internal/model"
	"github.com/roach88/verixa/internal/store"
)

const orderColumns = `id, created_at, customer_name, customer_email, total_amount, status, user_id, shipping_address`

// DefaultOrderLimit caps ListOrders when no limit is given.
const DefaultOrderLimit = 50

// GetOrder returns the order header with id. found is false when no such
// order exists.
func (r *Repository) GetOrder(ctx context.Context, id string) (o model.Order, found bool, err error) {
	row := r.engine.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err = scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, queryError("get order", err)
	}
	return o, true, nil
}

// ListOrderItems returns the items of an order in insertion order.
func (r *Repository) ListOrderItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	rows, err := r.engine.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, selected_size, selected_color, price_at_purchase
		FROM order_items
		WHERE order_id = ?
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, queryError("list order items", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
			&it.SelectedSize, &it.SelectedColor, &it.PriceAtPurchase)
		if err != nil {
			return nil, queryError("list order items", fmt.Errorf("scan order item: %w", err))
		}
		if it.Quantity < 1 || it.PriceAtPurchase.IsNegative() {
			return nil, queryError("list order items", fmt.Errorf("invalid order item row %d", it.ID))
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list order items", err)
	}
	return items, nil
}

// ListOrders returns the newest orders first. A limit <= 0 means
// DefaultOrderLimit.
func (r *Repository) ListOrders(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = DefaultOrderLimit
	}
	return r.queryOrders(ctx, "list orders", `
		SELECT `+orderColumns+` FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
}

// ListOrdersForUser returns the orders placed by an authenticated owner,
// newest first.
func (r *Repository) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return r.queryOrders(ctx, "list user orders", `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID.String())
}

func (r *Repository) queryOrders(ctx context.Context, op, query string, args ...any) ([]model.Order, error) {
	rows, err := r.engine.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError(op, err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, queryError(op, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(op, fmt.Errorf("iterate orders: %w", err))
	}
	return orders, nil
}

// UpdateOrderStatus moves an order to next. Only transitions allowed by
// model.OrderStatus.CanTransition are accepted.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id string, next model.OrderStatus) error {
	err := r.engine.InTx(ctx, func(q store.Querier) error {
		var raw string
		err := q.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ?`, id).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("order %q: %w", id, model.ErrNotFound)
		}
		if err != nil {
			return queryError("read order status", err)
		}

		current, err := model.ParseOrderStatus(raw)
		if err != nil {
			return queryError("read order status", fmt.Errorf("order %q: %w", id, err))
		}
		if !current.CanTransition(next) {
			return model.NewValidationError("status", "order %s cannot move from %s to %s", id, current, next)
		}

		if _, err := q.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(next), id); err != nil {
			return queryError("update order status", err)
		}
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotFound), model.IsValidationError(err), model.IsQueryError(err):
		return err
	default:
		// begin or commit failed
		return queryError("update order status", err)
	}

	r.logger.Info("order status updated", "order_id", id, "status", string(next))
	return nil
}

// Stats summarizes orders and products. Revenue is the sum of all order
// totals and customers are counted by distinct email.
func (r *Repository) Stats(ctx context.Context) (model.Stats, error) {
	stats := model.Stats{TotalRevenue: decimal.Zero}

	err := r.engine.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT customer_email) FROM orders
	`).Scan(&stats.TotalOrders, &stats.TotalCustomers)
	if err != nil {
		return model.Stats{}, queryError("stats", fmt.Errorf("order counts: %w", err))
	}

	// Summed in Go: SQLite would add the totals as floats.
	rows, err := r.engine.QueryContext(ctx, `SELECT total_amount FROM orders`)
	if err != nil {
		return model.Stats{}, queryError("stats", err)
	}
	defer rows.Close()
	for rows.Next() {
		var total decimal.Decimal
		if err := rows.Scan(&total); err != nil {
			return model.Stats{}, queryError("stats", fmt.Errorf("scan total: %w", err))
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(total)
	}
	if err := rows.Err(); err != nil {
		return model.Stats{}, queryError("stats", err)
	}

	err = r.engine.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&stats.TotalProducts)
	if err != nil {
		return model.Stats{}, queryError("stats", fmt.Errorf("product count: %w", err))
	}
	return stats, nil
}

// ListCustomers groups orders by customer email, highest spend first.
// The name is taken from the customer's most recent order.
func (r *Repository) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	orders, err := r.queryOrders(ctx, "list customers", `
		SELECT `+orderColumns+` FROM orders
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}

	byEmail := make(map[string]*model.Customer)
	customers := []*model.Customer{}
	for _, o := range orders {
		c, ok := byEmail[o.CustomerEmail]
		if !ok {
			// Orders arrive newest first.
			c = &model.Customer{
				Name:       o.CustomerName,
				Email:      o.CustomerEmail,
				TotalSpent: decimal.Zero,
				LastOrder:  o.CreatedAt,
			}
			byEmail[o.CustomerEmail] = c
			customers = append(customers, c)
		}
		c.Orders++
		c.TotalSpent = c.TotalSpent.Add(o.TotalAmount)
	}

	slices.SortStableFunc(customers, func(a, b *model.Customer) int {
		if cmp := b.TotalSpent.Cmp(a.TotalSpent); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.Email, b.Email)
	})

	out := make([]model.Customer, len(customers))
	for i, c := range customers {
		out[i] = *c
	}
	return out, nil
}

func scanOrder(sc scanner) (model.Order, error) {
	var (
		o       model.Order
		status  string
		address sql.NullString
	)
	err := sc.Scan(&o.ID, &o.CreatedAt, &o.CustomerName, &o.CustomerEmail,
		&o.TotalAmount, &status, &o.UserID, &address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Order{}, err
		}
		return model.Order{}, fmt.Errorf("scan order: %w", err)
	}

	o.Status, err = model.ParseOrderStatus(status)
	if err != nil {
		return model.Order{}, fmt.Errorf("invalid order row %s: %w", o.ID, err)
	}
	if o.TotalAmount.IsNegative() {
		return model.Order{}, fmt.Errorf("invalid order row %s: negative total", o.ID)
	}
	if address.Valid {
		o.ShippingAddress = &address.String
	}
	return o, nil
}
