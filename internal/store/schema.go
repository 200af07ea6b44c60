package store

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema_sqlite.sql
var sqliteSchemaSQL string

//go:embed schema_postgres.sql
var postgresSchemaSQL string

// Tables lists the canonical tables in dependency order.
var Tables = []string{"products", "orders", "order_items"}

// EnsureSchema creates the products, orders and order_items tables if they
// don't exist. This function is idempotent - safe to call on every boot.
func EnsureSchema(ctx context.Context, e Engine) error {
	ddl := sqliteSchemaSQL
	if e.Dialect().Name() == BackendPostgres {
		ddl = postgresSchemaSQL
	}

	if _, err := e.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}
