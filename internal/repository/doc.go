// Package repository is the data access layer the presentation layer talks
// to. It reads products and orders through a store.Engine, converts every
// row into a validated model value, and delegates order writes to the order
// orchestrator.
//
// Read failures are reported as *model.QueryError. A missing row is not an
// error: lookups return a found flag instead.
package repository
