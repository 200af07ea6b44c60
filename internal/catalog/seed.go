package catalog

import (
	"context"
	"fmt"

	"github.com/roach88/verixa/internal/model"
	"github.com/roach88/verixa/internal/store"
)

// EnsureSeed inserts products when the products table is empty and returns
// how many rows were written. A non-empty table is left untouched, so
// seeding runs at most once per database. All inserts share one
// transaction.
func EnsureSeed(ctx context.Context, e store.Engine, products []model.Product) (int, error) {
	var count int
	if err := e.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	dialect := e.Dialect()
	err := e.InTx(ctx, func(q store.Querier) error {
		for _, p := range products {
			if err := insertProduct(ctx, q, dialect, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed products: %w", err)
	}
	return len(products), nil
}

func insertProduct(ctx context.Context, q store.Querier, d store.Dialect, p model.Product) error {
	images, err := d.ListValue(p.Images)
	if err != nil {
		return fmt.Errorf("product %s images: %w", p.ID, err)
	}
	sizes, err := d.ListValue(p.Sizes)
	if err != nil {
		return fmt.Errorf("product %s sizes: %w", p.ID, err)
	}
	colors, err := d.ListValue(p.Colors)
	if err != nil {
		return fmt.Errorf("product %s colors: %w", p.ID, err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO products (
			id, name, price, category, description,
			images, sizes, colors, is_new, rating, review_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.Name, p.Price.StringFixed(2), p.Category, p.Description,
		images, sizes, colors, p.IsNew, p.Rating.StringFixed(1), p.ReviewCount,
	)
	if err != nil {
		return fmt.Errorf("insert product %s: %w", p.ID, err)
	}
	return nil
}
