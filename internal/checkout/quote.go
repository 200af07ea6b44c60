package checkout

import (
	"github.com/shopspring/decimal"
)

var (
	// TaxRate is applied to the cart subtotal.
	TaxRate = decimal.RequireFromString("0.08")

	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(100)

	// ShippingFee is charged at or below FreeShippingThreshold.
	ShippingFee = decimal.NewFromInt(10)
)

// Quote is the price breakdown shown before payment.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// QuoteFor prices a cart subtotal. Tax and total are rounded to cents.
func QuoteFor(subtotal decimal.Decimal) Quote {
	shipping := ShippingFee
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Quote{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping).Round(2),
	}
}
