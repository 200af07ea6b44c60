package repository

import (
	"context"
	"log/slog"

	"github.com/roach88/verixa/internal/model"
	"github.com/roach88/verixa/internal/store"
)

// OrderPlacer writes one order atomically and returns its id.
// *order.Orchestrator implements it.
type OrderPlacer interface {
	Place(ctx context.Context, in model.OrderInput) (string, error)
}

// Repository reads and writes storefront data.
type Repository struct {
	engine store.Engine
	orders OrderPlacer
	logger *slog.Logger
}

// New creates a repository over e. Order writes go to orders.
func New(e store.Engine, orders OrderPlacer, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{engine: e, orders: orders, logger: logger}
}

// CreateOrder writes in as one order and returns the new order id.
func (r *Repository) CreateOrder(ctx context.Context, in model.OrderInput) (string, error) {
	return r.orders.Place(ctx, in)
}

func queryError(op string, err error) error {
	return &model.QueryError{Op: op, Err: err}
}
