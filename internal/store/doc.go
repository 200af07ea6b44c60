// Package store provides the persistent relational engine behind the
// storefront.
//
// Two backends implement the same Engine port:
//   - SQLite (embedded, file-backed or :memory:) via mattn/go-sqlite3
//   - Postgres (hosted variant) via lib/pq
//
// Callers write queries with "?" placeholders; the store rebinds them for
// its dialect. List-valued columns (images, sizes, colors) are JSON text in
// SQLite and text[] in Postgres.
//
// # Lifecycle
//
// A Provider owns the single engine handle for the process. The first
// Acquire opens the engine and runs the bootstrap hook (schema, then seed);
// concurrent callers wait on that same initialization. The outcome is
// memoized: a failed initialization is reported as *model.EngineInitError to
// every caller and is never retried.
//
// # SQLite configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// # Transactions
//
// InTx is explicit BEGIN / COMMIT / ROLLBACK. When the callback fails the
// transaction is rolled back before the error is returned, so callers see
// either every row of the unit or none of them.
package store
