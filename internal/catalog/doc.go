// Package catalog holds the static product catalog and seeds it into an
// empty engine.
//
// The catalog ships as YAML embedded in the binary and is checked against a
// CUE schema before it is decoded, so a malformed entry fails at load time
// instead of producing a half-valid products table.
package catalog
