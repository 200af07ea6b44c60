package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/roach88/verixa/internal/model"
)

// Store is the shopper's session: the reducer plus persistence.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	mu      sync.Mutex
	state   State
	storage Storage
	logger  *slog.Logger
}

// Open loads the session from storage. Absent or corrupt values start
// empty; corruption is logged, never returned.
func Open(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{storage: storage, logger: logger}
	s.state.Cart = s.loadCart()
	s.state.Wishlist = s.loadWishlist()
	return s
}

func (s *Store) loadCart() []model.CartItem {
	var cart []model.CartItem
	if !s.load(CartKey, &cart) {
		return nil
	}
	for _, c := range cart {
		if c.Product.ID == "" || c.Quantity < 1 || c.SelectedSize == "" || c.SelectedColor == "" {
			s.logger.Warn("discarding corrupt session value", "key", CartKey, "error", "invalid cart entry")
			return nil
		}
	}
	return cart
}

func (s *Store) loadWishlist() []string {
	var ids []string
	if !s.load(WishlistKey, &ids) {
		return nil
	}
	// Drop duplicates and empty ids, keeping first occurrence order.
	out := ids[:0]
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// load decodes key into dst and reports whether it succeeded.
func (s *Store) load(key string, dst any) bool {
	data, ok, err := s.storage.Load(key)
	if err != nil {
		s.logger.Warn("session storage unreadable", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("discarding corrupt session value", "key", key, "error", err)
		return false
	}
	return true
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Cart:     slices.Clone(s.state.Cart),
		Wishlist: slices.Clone(s.state.Wishlist),
	}
}

// Dispatch applies a and persists the result. The new state stays applied
// even if persisting fails; the persist error is returned.
func (s *Store) Dispatch(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.persist()
}

func (s *Store) persist() error {
	cart := s.state.Cart
	if cart == nil {
		cart = []model.CartItem{}
	}
	wishlist := s.state.Wishlist
	if wishlist == nil {
		wishlist = []string{}
	}

	var errs []error
	if err := s.save(CartKey, cart); err != nil {
		errs = append(errs, err)
	}
	if err := s.save(WishlistKey, wishlist); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Error("failed to persist session", "error", err)
		return err
	}
	return nil
}

func (s *Store) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.storage.Save(key, data)
}

// AddToCart adds one unit of p in the chosen size and color. Both must be
// set and offered by p; otherwise a *model.ValidationError is returned and
// nothing changes.
func (s *Store) AddToCart(p model.Product, size, color string) error {
	switch {
	case size == "":
		return model.NewValidationError("size", "please select a size")
	case color == "":
		return model.NewValidationError("color", "please select a color")
	case !p.HasSize(size):
		return model.NewValidationError("size", "%q is not offered for %s", size, p.Name)
	case !p.HasColor(color):
		return model.NewValidationError("color", "%q is not offered for %s", color, p.Name)
	}
	return s.Dispatch(AddToCart{Product: p, Size: size, Color: color})
}

// UpdateQuantity sets an entry's quantity. qty < 1 is a no-op.
func (s *Store) UpdateQuantity(productID, size, color string, qty int) error {
	return s.Dispatch(UpdateQuantity{ProductID: productID, Size: size, Color: color, Quantity: qty})
}

// RemoveFromCart deletes the matching entry.
func (s *Store) RemoveFromCart(productID, size, color string) error {
	return s.Dispatch(RemoveFromCart{ProductID: productID, Size: size, Color: color})
}

// ToggleWishlist flips wishlist membership for productID.
func (s *Store) ToggleWishlist(productID string) error {
	return s.Dispatch(ToggleWishlist{ProductID: productID})
}

// ClearCart empties the cart.
func (s *Store) ClearCart() error {
	return s.Dispatch(ClearCart{})
}

// CartTotal is recomputed from the current cart on every call.
func (s *Store) CartTotal() decimal.Decimal {
	return s.State().CartTotal()
}

// CartCount is recomputed from the current cart on every call.
func (s *Store) CartCount() int {
	return s.State().CartCount()
}

// IsWishlisted reports whether productID is on the wishlist.
func (s *Store) IsWishlisted(productID string) bool {
	return s.State().IsWishlisted(productID)
}
