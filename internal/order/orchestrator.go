package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/verixa/internal/model"
	"github.com/roach88/verixa/internal/store"
)

// MaxAttempts bounds how many ids are tried when the header insert hits an
// id collision.
const MaxAttempts = 3

// Write stages reported in model.OrderWriteError.
const (
	StageID     = "id"
	StageBegin  = "begin"
	StageHeader = "header"
	StageItem   = "item"
	StageCommit = "commit"
)

// Orchestrator places orders against an engine.
type Orchestrator struct {
	engine store.Engine
	ids    IDGenerator
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithIDGenerator replaces the crypto/rand id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *Orchestrator) { o.ids = g }
}

// WithClock sets the source of created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator writing to e.
func New(e store.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine: e,
		ids:    RandomIDGenerator{},
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Place validates in and writes it as one order with status "confirmed".
// It returns the new order id.
//
// Validation failures are *model.ValidationError and happen before any I/O.
// Write failures are *model.OrderWriteError; the transaction has been rolled
// back and no row of the order is visible.
func (o *Orchestrator) Place(ctx context.Context, in model.OrderInput) (string, error) {
	in = normalizeInput(in)
	if err := in.Validate(); err != nil {
		return "", err
	}

	for attempt := 1; ; attempt++ {
		id, err := o.ids.NewOrderID()
		if err != nil {
			return "", &model.OrderWriteError{Stage: StageID, Err: err}
		}

		err = o.write(ctx, id, in)
		if err == nil {
			o.logger.Info("order placed",
				"order_id", id,
				"items", len(in.Items),
				"total", in.TotalAmount.StringFixed(2),
				"owner", in.Owner != nil)
			return id, nil
		}

		if attempt < MaxAttempts && o.isIDCollision(err) {
			o.logger.Warn("order id collision, retrying", "order_id", id, "attempt", attempt)
			continue
		}

		o.logger.Error("order write failed", "order_id", id, "error", err)
		return "", err
	}
}

// isIDCollision reports whether err is a unique violation on the header row.
func (o *Orchestrator) isIDCollision(err error) bool {
	var werr *model.OrderWriteError
	if !errors.As(err, &werr) || werr.Stage != StageHeader {
		return false
	}
	return o.engine.Dialect().IsUniqueViolation(werr.Err)
}

func (o *Orchestrator) write(ctx context.Context, id string, in model.OrderInput) error {
	dialect := o.engine.Dialect()
	createdAt := o.now().UTC()

	stage := StageBegin
	err := o.engine.InTx(ctx, func(q store.Querier) error {
		stage = StageHeader
		if err := insertHeader(ctx, q, id, createdAt, in); err != nil {
			return err
		}

		stage = StageItem
		for i, line := range in.Items {
			if err := checkLine(ctx, q, dialect, i, line); err != nil {
				return err
			}
			if err := insertItem(ctx, q, id, line); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}

		stage = StageCommit
		return nil
	})
	if err != nil {
		return &model.OrderWriteError{OrderID: id, Stage: stage, Err: err}
	}
	return nil
}

func insertHeader(ctx context.Context, q store.Querier, id string, createdAt time.Time, in model.OrderInput) error {
	var owner uuid.NullUUID
	if in.Owner != nil {
		owner = uuid.NullUUID{UUID: in.Owner.ID, Valid: true}
	}
	address := sql.NullString{String: in.ShippingAddress, Valid: in.ShippingAddress != ""}

	_, err := q.ExecContext(ctx, `
		INSERT INTO orders
		(id, created_at, customer_name, customer_email, total_amount, status, user_id, shipping_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		createdAt,
		in.CustomerName,
		in.CustomerEmail,
		in.TotalAmount.StringFixed(2),
		string(model.StatusConfirmed),
		owner,
		address,
	)
	if err != nil {
		return fmt.Errorf("insert order header: %w", err)
	}
	return nil
}

// checkLine verifies that the product exists and offers the chosen variant.
func checkLine(ctx context.Context, q store.Querier, d store.Dialect, i int, line model.OrderLine) error {
	var p model.Product
	err := q.QueryRowContext(ctx, `SELECT sizes, colors FROM products WHERE id = ?`, line.ProductID).
		Scan(d.ListScanner(&p.Sizes), d.ListScanner(&p.Colors))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("item %d: product %q: %w", i, line.ProductID, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("item %d: look up product %q: %w", i, line.ProductID, err)
	}

	if !p.HasSize(line.SelectedSize) {
		return model.NewValidationError("items", "item %d: size %q is not offered for product %s", i, line.SelectedSize, line.ProductID)
	}
	if !p.HasColor(line.SelectedColor) {
		return model.NewValidationError("items", "item %d: color %q is not offered for product %s", i, line.SelectedColor, line.ProductID)
	}
	return nil
}

func insertItem(ctx context.Context, q store.Querier, orderID string, line model.OrderLine) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO order_items
		(order_id, product_id, quantity, selected_size, selected_color, price_at_purchase)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		orderID,
		line.ProductID,
		line.Quantity,
		line.SelectedSize,
		line.SelectedColor,
		line.PriceAtPurchase.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func normalizeInput(in model.OrderInput) model.OrderInput {
	in.CustomerName = model.NormalizeText(in.CustomerName)
	in.CustomerEmail = model.NormalizeText(in.CustomerEmail)
	in.ShippingAddress = model.NormalizeText(in.ShippingAddress)
	return in
}
