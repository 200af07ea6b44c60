// Package checkout turns the shopper's cart into an order.
package checkout

import (
	"context"
	"log/slog"

	"github.com/roach88/verixa/internal/model"
	"github.com/roach88/verixa/internal/session"
)

// OrderCreator writes an order. *repository.Repository implements it.
type OrderCreator interface {
	CreateOrder(ctx context.Context, in model.OrderInput) (string, error)
}

// Customer is the contact and delivery information entered at checkout.
type Customer struct {
	Name            string
	Email           string
	ShippingAddress string

	// Owner is the signed-in user, or nil for an anonymous checkout.
	Owner *model.Owner
}

// Receipt describes a placed order.
type Receipt struct {
	OrderID string `json:"order_id"`
	Quote   Quote  `json:"quote"`
	Items   int    `json:"items"`
}

// Service places orders from a session cart.
type Service struct {
	orders  OrderCreator
	session *session.Store
	logger  *slog.Logger
}

// NewService creates a checkout service.
func NewService(orders OrderCreator, sess *session.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{orders: orders, session: sess, logger: logger}
}

// Quote prices the current cart.
func (s *Service) Quote() Quote {
	return QuoteFor(s.session.CartTotal())
}

// Submit writes the current cart as one order.
//
// The cart is cleared only after the order write succeeds. On any error the
// cart is left exactly as it was, so the shopper can retry.
func (s *Service) Submit(ctx context.Context, c Customer) (Receipt, error) {
	state := s.session.State()
	if len(state.Cart) == 0 {
		return Receipt{}, model.NewValidationError("cart", "cart is empty")
	}

	in := BuildOrderInput(state, c)
	quote := QuoteFor(state.CartTotal())
	in.TotalAmount = quote.Total

	id, err := s.orders.CreateOrder(ctx, in)
	if err != nil {
		s.logger.Warn("checkout failed, cart kept", "items", state.CartCount(), "error", err)
		return Receipt{}, err
	}

	// The order is durable at this point. A failure to persist the emptied
	// cart is logged but does not undo the checkout.
	if err := s.session.ClearCart(); err != nil {
		s.logger.Error("order placed but cart could not be cleared", "order_id", id, "error", err)
	}

	return Receipt{OrderID: id, Quote: quote, Items: state.CartCount()}, nil
}

// BuildOrderInput converts cart entries into order lines. Each line's
// price-at-purchase is the price captured when the entry entered the cart.
// TotalAmount is the bare cart subtotal; Submit replaces it with the quoted
// total.
func BuildOrderInput(state session.State, c Customer) model.OrderInput {
	email := c.Email
	if email == "" && c.Owner != nil {
		email = c.Owner.Email
	}

	lines := make([]model.OrderLine, 0, len(state.Cart))
	for _, item := range state.Cart {
		lines = append(lines, model.OrderLine{
			ProductID:       item.Product.ID,
			Quantity:        item.Quantity,
			SelectedSize:    item.SelectedSize,
			SelectedColor:   item.SelectedColor,
			PriceAtPurchase: item.Product.Price,
		})
	}

	return model.OrderInput{
		CustomerName:    c.Name,
		CustomerEmail:   email,
		TotalAmount:     state.CartTotal(),
		ShippingAddress: c.ShippingAddress,
		Owner:           c.Owner,
		Items:           lines,
	}
}
