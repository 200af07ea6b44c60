package model

import "strings"

// SortOption orders a product listing.
type SortOption string

const (
	SortNewest    SortOption = "Newest"
	SortPriceLow  SortOption = "Price: Low to High"
	SortPriceHigh SortOption = "Price: High to Low"
)

// ParseSortOption accepts the display labels and the short forms
// "newest", "price-asc" and "price-desc". Anything else yields SortNewest.
func ParseSortOption(s string) SortOption {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "price: low to high", "price-asc", "price_asc":
		return SortPriceLow
	case "price: high to low", "price-desc", "price_desc":
		return SortPriceHigh
	default:
		return SortNewest
	}
}
