// Package session holds the shopper's cart and wishlist.
//
// State changes go through Reduce, a pure function from (State, Action) to a
// new State. Store wraps the reducer with a mutex and a Storage port: after
// every mutation the full cart and the full wishlist are written back
// synchronously, and on open they are read back. Missing or unreadable
// storage yields an empty session rather than an error.
package session
