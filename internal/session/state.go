package session

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/roach88/verixa/internal/model"
)

// State is a snapshot of the cart and the wishlist.
type State struct {
	Cart     []model.CartItem
	Wishlist []string
}

// Action is a state transition understood by Reduce.
type Action interface {
	isAction()
}

// AddToCart adds one unit of Product in the given variant. An existing
// entry with the same (id, size, color) is incremented instead of
// duplicated.
type AddToCart struct {
	Product model.Product
	Size    string
	Color   string
}

// UpdateQuantity sets the quantity of an entry. Quantities below one are
// ignored; use RemoveFromCart to delete an entry.
type UpdateQuantity struct {
	ProductID string
	Size      string
	Color     string
	Quantity  int
}

// RemoveFromCart deletes the matching entry, if any.
type RemoveFromCart struct {
	ProductID string
	Size      string
	Color     string
}

// ToggleWishlist adds ProductID when absent and removes it when present.
type ToggleWishlist struct {
	ProductID string
}

// ClearCart empties the cart. The wishlist is kept.
type ClearCart struct{}

func (AddToCart) isAction()      {}
func (UpdateQuantity) isAction() {}
func (RemoveFromCart) isAction() {}
func (ToggleWishlist) isAction() {}
func (ClearCart) isAction()      {}

// Reduce applies a to s and returns the resulting state. s is not modified.
func Reduce(s State, a Action) State {
	next := State{
		Cart:     slices.Clone(s.Cart),
		Wishlist: slices.Clone(s.Wishlist),
	}

	switch a := a.(type) {
	case AddToCart:
		i := next.findItem(a.Product.ID, a.Size, a.Color)
		if i >= 0 {
			next.Cart[i].Quantity++
			break
		}
		next.Cart = append(next.Cart, model.CartItem{
			Product:       snapshot(a.Product),
			SelectedSize:  a.Size,
			SelectedColor: a.Color,
			Quantity:      1,
		})

	case UpdateQuantity:
		if a.Quantity < 1 {
			break
		}
		if i := next.findItem(a.ProductID, a.Size, a.Color); i >= 0 {
			next.Cart[i].Quantity = a.Quantity
		}

	case RemoveFromCart:
		next.Cart = slices.DeleteFunc(next.Cart, func(c model.CartItem) bool {
			return c.Matches(a.ProductID, a.Size, a.Color)
		})

	case ToggleWishlist:
		if i := slices.Index(next.Wishlist, a.ProductID); i >= 0 {
			next.Wishlist = slices.Delete(next.Wishlist, i, i+1)
		} else {
			next.Wishlist = append(next.Wishlist, a.ProductID)
		}

	case ClearCart:
		next.Cart = nil
	}

	return next
}

func (s State) findItem(productID, size, color string) int {
	return slices.IndexFunc(s.Cart, func(c model.CartItem) bool {
		return c.Matches(productID, size, color)
	})
}

// CartTotal is the sum of price × quantity over the cart.
func (s State) CartTotal() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.Cart {
		total = total.Add(c.LineTotal())
	}
	return total
}

// CartCount is the sum of quantities over the cart.
func (s State) CartCount() int {
	n := 0
	for _, c := range s.Cart {
		n += c.Quantity
	}
	return n
}

// IsWishlisted reports whether productID is on the wishlist.
func (s State) IsWishlisted(productID string) bool {
	return slices.Contains(s.Wishlist, productID)
}

// snapshot copies p so later edits to the caller's slices cannot reach the
// cart entry.
func snapshot(p model.Product) model.Product {
	p.Images = slices.Clone(p.Images)
	p.Sizes = slices.Clone(p.Sizes)
	p.Colors = slices.Clone(p.Colors)
	return p
}
