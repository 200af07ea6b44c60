package harness

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/roach88/verixa/internal/app"
	"github.com/roach88/verixa/internal/checkout"
	"github.com/roach88/verixa/internal/model"
)

// Action names accepted in setup and flow steps.
const (
	ActionListProducts   = "list_products"
	ActionGetProduct     = "get_product"
	ActionAddToCart      = "add_to_cart"
	ActionUpdateQuantity = "update_quantity"
	ActionRemoveFromCart = "remove_from_cart"
	ActionClearCart      = "clear_cart"
	ActionToggleWishlist = "toggle_wishlist"
	ActionReprice        = "reprice"
	ActionCheckout       = "checkout"
	ActionUpdateStatus   = "update_status"
	ActionStats          = "stats"
)

// Output cases recorded on completions.
const (
	CaseOK         = "ok"
	CaseValidation = "validation_error"
	CaseOrderWrite = "order_write_error"
	CaseNotFound   = "not_found"
	CaseQuery      = "query_error"
	CaseEngineInit = "engine_init_error"
	CaseError      = "error"
)

// actionFunc performs one step against a booted application. The returned
// map becomes the completion result.
type actionFunc func(ctx context.Context, a *app.App, args map[string]any) (map[string]any, error)

var actions map[string]actionFunc

func init() {
	actions = map[string]actionFunc{
		ActionListProducts:   listProducts,
		ActionGetProduct:     getProduct,
		ActionAddToCart:      addToCart,
		ActionUpdateQuantity: updateQuantity,
		ActionRemoveFromCart: removeFromCart,
		ActionClearCart:      clearCart,
		ActionToggleWishlist: toggleWishlist,
		ActionReprice:        reprice,
		ActionCheckout:       checkoutCart,
		ActionUpdateStatus:   updateStatus,
		ActionStats:          stats,
	}
}

func listProducts(ctx context.Context, a *app.App, args map[string]any) (map[string]any, error) {
	category, _ := optString(args, "category")
	sort, _ := optString(args, "sort")

	products, err := a.Repo.ListProducts(ctx, category, model.ParseSortOption(sort))
	if err != nil {
		return nil, err
	}
	ids := make([]any, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return map[string]any{"count": len(products), "ids": ids}, nil
}

func getProduct(ctx context.Context, a *app.App, args map[string]any) (map[string]any, error) {
	p, err := lookupProduct(ctx, a, args)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"category": p.Category,
		"name":     p.Name,
		"price":    p.Price.StringFixed(2),
	}, nil
}

func addToCart(ctx context.Context, a *app.App, args map[string]any) (map[string]any, error) {
	p, err := lookupProduct(ctx, a, args)
	if err != nil {
		return nil, err
	}
	size, _ := optString(args, "size")
	color, _ := optString(args, "color")
	if err := a.Session.AddToCart(p, size, color); err != nil {
		return nil, err
	}
	return cartResult(a), nil
}

func updateQuantity(_ context.Context, a *app.App, args map[string]any) (map[string]any, error) {
	id, err := reqString(args, "product_id")
	if err != nil {
		return nil, err
	}
	qty, err := reqInt(args, "quantity")
	if err != nil {
		return nil, err
	}
	size, _ := optString(args, "size")
	color, _ := optString(args, "color")
	if err := a.Session.UpdateQuantity(id, size, color, qty); err != nil {
		return nil, err
	}
	return cartResult(a), nil
}

func removeFromCart(_ context.Context, a *app.App, args map[string]any) (map[string]any, error) {
	id, err := reqString(args, "product_id")
	if err != nil {
		return nil, err
	}
	size, _ := optString(args, "size")
	color, _ := optString(args, "color")
	if err := a.Session.RemoveFromCart(id, size, color); err != nil {
		return nil, err
	}
	return cartResult(a), nil
}

func clearCart(_ context.Context, a *app.App, _ map[string]any) (map[string]any, error) {
	if err := a.Session.ClearCart(); err != nil {
		return nil, err
	}
	return cartResult(a), nil
}

func toggleWishlist(_ context.Context, a *app.App, args map[string]any) (map[string]any, error) {
	id, err := reqString(args, "product_id")
	if err != nil {
		return nil, err
	}
	if err := a.Session.ToggleWishlist(id); err != nil {
		return nil, err
	}
	return map[string]any{
		"wishlist_count": len(a.Session.State().Wishlist),
		"wishlisted":     a.Session.IsWishlisted(id),
	}, nil
}

func reprice(ctx context.Context, a *app.App, args map[string]any) (map[string]any, error) {
	id, err := reqString(args, "product_id")
	if err != nil {
		return nil, err
	}
	price, err := reqDecimal(args, "price")
	if err != nil {
		return nil, err
	}
	if err := a.Repo.UpdateProductPrice(ctx, id, price); err != nil {
		return nil, err
	}
	return map[string]any{"price": price.StringFixed(2)}, nil
}

func checkoutCart(ctx context.Context, a *app.App, args map[string]any) (map[string]any, error) {
	c := checkout.Customer{}
	c.Name, _ = optString(args, "name")
	c.Email, _ = optString(args, "email")
	c.ShippingAddress, _ = optString(args, "address")

	if raw, ok := optString(args, "owner_id"); ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, model.NewValidationError("owner_id", "invalid uuid %q", raw)
		}
		c.Owner = &model.Owner{ID: id, Email: c.Email}
	}

	receipt, err := a.Checkout.Submit(ctx, c)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"items":    receipt.Items,
		"order_id": receipt.OrderID,
		"shipping": receipt.Quote.Shipping.StringFixed(2),
		"subtotal": receipt.Quote.Subtotal.StringFixed(2),
		"tax":      receipt.Quote.Tax.StringFixed(2),
		"total":    receipt.Quote.Total.StringFixed(2),
	}, nil
}

func updateStatus(ctx context.Context, a *app.App, args map[string]any) (map[string]any, error) {
	id, err := reqString(args, "order_id")
	if err != nil {
		return nil, err
	}
	raw, err := reqString(args, "status")
	if err != nil {
		return nil, err
	}
	status, err := model.ParseOrderStatus(raw)
	if err != nil {
		return nil, model.NewValidationError("status", "%v", err)
	}
	if err := a.Repo.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return map[string]any{"status": string(status)}, nil
}

func stats(ctx context.Context, a *app.App, _ map[string]any) (map[string]any, error) {
	s, err := a.Repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_customers": s.TotalCustomers,
		"total_orders":    s.TotalOrders,
		"total_products":  s.TotalProducts,
		"total_revenue":   s.TotalRevenue.StringFixed(2),
	}, nil
}

func lookupProduct(ctx context.Context, a *app.App, args map[string]any) (model.Product, error) {
	id, err := reqString(args, "product_id")
	if err != nil {
		return model.Product{}, err
	}
	p, found, err := a.Repo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if !found {
		return model.Product{}, fmt.Errorf("product %q: %w", id, model.ErrNotFound)
	}
	return p, nil
}

func cartResult(a *app.App) map[string]any {
	return map[string]any{
		"cart_count": a.Session.CartCount(),
		"cart_total": a.Session.CartTotal().StringFixed(2),
	}
}

// outputCase classifies an action error. An order write that failed
// validation inside the transaction is still an order write error.
func outputCase(err error) string {
	switch {
	case err == nil:
		return CaseOK
	case model.IsOrderWriteError(err):
		return CaseOrderWrite
	case model.IsValidationError(err):
		return CaseValidation
	case errors.Is(err, model.ErrNotFound):
		return CaseNotFound
	case model.IsQueryError(err):
		return CaseQuery
	case model.IsEngineInitError(err):
		return CaseEngineInit
	default:
		return CaseError
	}
}

// errorResult describes a failed action without its message, which keeps
// traces stable across wording changes.
func errorResult(err error) map[string]any {
	var owe *model.OrderWriteError
	if errors.As(err, &owe) {
		return map[string]any{"stage": owe.Stage}
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return map[string]any{"field": ve.Field}
	}
	return nil
}

func optString(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}

func reqString(args map[string]any, key string) (string, error) {
	s, ok := optString(args, key)
	if !ok {
		return "", model.NewValidationError(key, "argument is required")
	}
	return s, nil
}

func reqInt(args map[string]any, key string) (int, error) {
	s, err := reqString(args, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, model.NewValidationError(key, "not an integer: %q", s)
	}
	return n, nil
}

func reqDecimal(args map[string]any, key string) (decimal.Decimal, error) {
	s, err := reqString(args, key)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, model.NewValidationError(key, "not a decimal: %q", s)
	}
	return d, nil
}
