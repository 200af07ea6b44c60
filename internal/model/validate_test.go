package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() Product {
	return Product{
		ID:          "1",
		Name:        "The Classic Essential",
		Price:       decimal.RequireFromString("35.00"),
		Category:    "Basics",
		Images:      []string{"https://example.com/1.jpg"},
		Sizes:       []string{"S", "M"},
		Colors:      []string{"White"},
		Rating:      decimal.RequireFromString("4.8"),
		ReviewCount: 124,
	}
}

func validInput() OrderInput {
	return OrderInput{
		CustomerName:  "Jean Gunnhildr",
		CustomerEmail: "jean@example.com",
		TotalAmount:   decimal.RequireFromString("35.00"),
		Items: []OrderLine{{
			ProductID:       "1",
			Quantity:        1,
			SelectedSize:    "M",
			SelectedColor:   "White",
			PriceAtPurchase: decimal.RequireFromString("35.00"),
		}},
	}
}

func TestProductValidate(t *testing.T) {
	require.NoError(t, validProduct().Validate())

	tests := map[string]func(p *Product){
		"id":           func(p *Product) { p.ID = "" },
		"name":         func(p *Product) { p.Name = "" },
		"price":        func(p *Product) { p.Price = decimal.NewFromInt(-1) },
		"rating":       func(p *Product) { p.Rating = decimal.RequireFromString("5.1") },
		"review_count": func(p *Product) { p.ReviewCount = -3 },
		"images":       func(p *Product) { p.Images = nil },
		"sizes":        func(p *Product) { p.Sizes = []string{} },
		"colors":       func(p *Product) { p.Colors = nil },
	}
	for field, mutate := range tests {
		t.Run(field, func(t *testing.T) {
			p := validProduct()
			mutate(&p)
			err := p.Validate()
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, field, ve.Field)
		})
	}
}

func TestProductHasSizeAndColor(t *testing.T) {
	p := validProduct()
	assert.True(t, p.HasSize("M"))
	assert.False(t, p.HasSize("XL"))
	assert.True(t, p.HasColor("White"))
	assert.False(t, p.HasColor("Black"))
}

func TestOrderInputValidate(t *testing.T) {
	require.NoError(t, validInput().Validate())

	tests := map[string]func(in *OrderInput){
		"empty name":     func(in *OrderInput) { in.CustomerName = "" },
		"bad email":      func(in *OrderInput) { in.CustomerEmail = "not-an-email" },
		"double at":      func(in *OrderInput) { in.CustomerEmail = "a@b@c" },
		"negative total": func(in *OrderInput) { in.TotalAmount = decimal.NewFromInt(-1) },
		"no items":       func(in *OrderInput) { in.Items = nil },
		"zero quantity":  func(in *OrderInput) { in.Items[0].Quantity = 0 },
		"missing size":   func(in *OrderInput) { in.Items[0].SelectedSize = "" },
		"negative price": func(in *OrderInput) { in.Items[0].PriceAtPurchase = decimal.NewFromInt(-5) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			in.Items = append([]OrderLine(nil), in.Items...)
			mutate(&in)
			assert.True(t, IsValidationError(in.Validate()))
		})
	}
}

func TestCartItemLineTotal(t *testing.T) {
	item := CartItem{Product: validProduct(), SelectedSize: "M", SelectedColor: "White", Quantity: 3}
	assert.True(t, decimal.RequireFromString("105.00").Equal(item.LineTotal()))
	assert.True(t, item.Matches("1", "M", "White"))
	assert.False(t, item.Matches("1", "S", "White"))
}

func TestNormalizeText(t *testing.T) {
	// "é" as e + combining acute accent composes to a single code point.
	assert.Equal(t, "V\u00e9rixa", NormalizeText("  Ve\u0301rixa \n"))
}

func TestErrorHelpers(t *testing.T) {
	cause := errors.New("disk full")

	initErr := fmt.Errorf("boot: %w", &EngineInitError{Backend: "sqlite", Diagnostic: "open failed", Err: cause})
	assert.True(t, IsEngineInitError(initErr))
	assert.ErrorIs(t, initErr, cause)
	assert.Contains(t, initErr.Error(), "sqlite")

	qErr := &QueryError{Op: "list products", Err: cause}
	assert.True(t, IsQueryError(qErr))
	assert.False(t, IsOrderWriteError(qErr))

	wErr := &OrderWriteError{OrderID: "ORD-ABC", Stage: "item", Err: cause}
	assert.True(t, IsOrderWriteError(wErr))
	assert.Contains(t, wErr.Error(), "ORD-ABC")
	assert.ErrorIs(t, wErr, cause)
}
