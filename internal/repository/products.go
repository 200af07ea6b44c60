package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/verixa/internal/model"
	"github.com/roach88/verixa/internal/store"
)

const productColumns = `id, name, price, category, description, images, sizes, colors, is_new, rating, review_count`

// ListProducts returns the catalog filtered by category and ordered by sort.
// An empty category or model.AllCategories disables filtering. Unknown sort
// options fall back to model.SortNewest.
//
// Returns an empty slice (not nil) when nothing matches.
func (r *Repository) ListProducts(ctx context.Context, category string, sort model.SortOption) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if category != "" && category != model.AllCategories {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY ` + orderClause(sort)

	rows, err := r.engine.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("list products", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows, r.engine.Dialect())
		if err != nil {
			return nil, queryError("list products", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list products", fmt.Errorf("iterate products: %w", err))
	}
	return products, nil
}

// orderClause maps a sort option onto ORDER BY. The id tiebreak keeps equal
// prices in a stable order.
func orderClause(sort model.SortOption) string {
	switch sort {
	case model.SortPriceLow:
		return `price ASC, id ASC`
	case model.SortPriceHigh:
		return `price DESC, id ASC`
	default:
		return `id ASC`
	}
}

// GetProduct returns the product with id. found is false when no such
// product exists.
func (r *Repository) GetProduct(ctx context.Context, id string) (p model.Product, found bool, err error) {
	row := r.engine.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err = scanProduct(row, r.engine.Dialect())
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, false, nil
	}
	if err != nil {
		return model.Product{}, false, queryError("get product", err)
	}
	return p, true, nil
}

// Categories returns the distinct product categories in name order.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.engine.QueryContext(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, queryError("list categories", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, queryError("list categories", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list categories", err)
	}
	return categories, nil
}

// UpdateProductPrice sets the catalog price of a product. Orders already
// written keep their price_at_purchase.
func (r *Repository) UpdateProductPrice(ctx context.Context, id string, price decimal.Decimal) error {
	if price.IsNegative() {
		return model.NewValidationError("price", "must be >= 0")
	}

	res, err := r.engine.ExecContext(ctx, `UPDATE products SET price = ? WHERE id = ?`, price.StringFixed(2), id)
	if err != nil {
		return queryError("update product price", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return queryError("update product price", err)
	}
	if n == 0 {
		return fmt.Errorf("product %q: %w", id, model.ErrNotFound)
	}

	r.logger.Info("product repriced", "product_id", id, "price", price.StringFixed(2))
	return nil
}

// scanProduct converts one products row. Rows that violate the product
// invariants are rejected rather than passed on.
func scanProduct(sc scanner, d store.Dialect) (model.Product, error) {
	var (
		p           model.Product
		description sql.NullString
	)
	err := sc.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Category,
		&description,
		d.ListScanner(&p.Images),
		d.ListScanner(&p.Sizes),
		d.ListScanner(&p.Colors),
		&p.IsNew,
		&p.Rating,
		&p.ReviewCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Product{}, err
		}
		return model.Product{}, fmt.Errorf("scan product: %w", err)
	}
	p.Description = description.String

	if err := p.Validate(); err != nil {
		return model.Product{}, fmt.Errorf("invalid product row: %w", err)
	}
	return p, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
