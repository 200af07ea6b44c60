// Package order writes orders atomically.
//
// An order is one header row plus one row per line item. The Orchestrator
// writes them inside a single engine transaction: either every row is
// committed or none is. Line items carry the price the customer saw when the
// item entered the cart; the live catalog price is never consulted.
//
// Order ids have the form ORD-XXXXXXXXX (nine characters of [A-Z0-9]). A
// header insert that collides with an existing id is retried with a fresh
// id, up to MaxAttempts times.
package order
