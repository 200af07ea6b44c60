// Package model provides the storefront domain types shared by every other
// internal package.
//
// model imports nothing internal. Persisted shapes (Product, Order,
// OrderItem) are kept separate from session-local shapes (CartItem) so that
// the relational store and the client state store never share a namespace.
//
// Key design constraints:
//   - Money and ratings are fixed-point decimals, never float64
//   - Order items carry a price snapshot independent of Product.Price
//   - All JSON tags use snake_case
package model
