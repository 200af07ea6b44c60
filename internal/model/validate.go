package model

import "github.com/shopspring/decimal"

var maxRating = decimal.NewFromInt(5)

// Validate checks the persisted invariants of a product.
func (p Product) Validate() error {
	switch {
	case p.ID == "":
		return NewValidationError("id", "must not be empty")
	case p.Name == "":
		return NewValidationError("name", "must not be empty (product %s)", p.ID)
	case p.Price.IsNegative():
		return NewValidationError("price", "must be >= 0 (product %s)", p.ID)
	case p.Rating.IsNegative() || p.Rating.GreaterThan(maxRating):
		return NewValidationError("rating", "must be within 0-5 (product %s)", p.ID)
	case p.ReviewCount < 0:
		return NewValidationError("review_count", "must be >= 0 (product %s)", p.ID)
	case len(p.Images) == 0:
		return NewValidationError("images", "must not be empty (product %s)", p.ID)
	case len(p.Sizes) == 0:
		return NewValidationError("sizes", "must not be empty (product %s)", p.ID)
	case len(p.Colors) == 0:
		return NewValidationError("colors", "must not be empty (product %s)", p.ID)
	}
	return nil
}

// Validate checks an order input before any I/O is attempted.
func (in OrderInput) Validate() error {
	if in.CustomerName == "" {
		return NewValidationError("customer_name", "must not be empty")
	}
	if !looksLikeEmail(in.CustomerEmail) {
		return NewValidationError("customer_email", "%q is not an email address", in.CustomerEmail)
	}
	if in.TotalAmount.IsNegative() {
		return NewValidationError("total_amount", "must be >= 0")
	}
	if len(in.Items) == 0 {
		return NewValidationError("items", "order has no items")
	}
	for i, item := range in.Items {
		if item.ProductID == "" {
			return NewValidationError("items", "item %d: product id is empty", i)
		}
		if item.Quantity < 1 {
			return NewValidationError("items", "item %d: quantity must be positive, got %d", i, item.Quantity)
		}
		if item.SelectedSize == "" || item.SelectedColor == "" {
			return NewValidationError("items", "item %d: size and color are required", i)
		}
		if item.PriceAtPurchase.IsNegative() {
			return NewValidationError("items", "item %d: price cannot be negative", i)
		}
	}
	return nil
}

func looksLikeEmail(s string) bool {
	at := -1
	for i, r := range s {
		if r == '@' {
			if at >= 0 {
				return false
			}
			at = i
		}
	}
	return at > 0 && at < len(s)-1
}
