// Package app wires the storefront together: configuration in, a ready
// engine plus the services built on it out.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/verixa/internal/catalog"
	"github.com/roach88/verixa/internal/checkout"
	"github.com/roach88/verixa/internal/config"
	"github.com/roach88/verixa/internal/model"
	"github.com/roach88/verixa/internal/order"
	"github.com/roach88/verixa/internal/repository"
	"github.com/roach88/verixa/internal/session"
	"github.com/roach88/verixa/internal/store"
)

// App holds the booted services. Each is constructed with the one engine
// handle acquired from the provider.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Engine   *store.Store
	Repo     *repository.Repository
	Orders   *order.Orchestrator
	Session  *session.Store
	Checkout *checkout.Service

	provider *store.Provider
}

type options struct {
	ids     order.IDGenerator
	clock   func() time.Time
	storage session.Storage
	catalog []model.Product
}

// Option adjusts Boot.
type Option func(*options)

// WithIDGenerator sets the order id source.
func WithIDGenerator(g order.IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// WithClock sets the order timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithSessionStorage replaces the file-backed session storage.
func WithSessionStorage(s session.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithCatalog seeds products instead of the configured catalog.
func WithCatalog(products []model.Product) Option {
	return func(o *options) { o.catalog = products }
}

// Boot acquires the engine (open, schema, seed) and constructs the
// services. An engine failure is returned as *model.EngineInitError and is
// fatal: Boot never retries.
func Boot(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	products := o.catalog
	if products == nil {
		var err error
		products, err = loadCatalog(cfg)
		if err != nil {
			return nil, err
		}
	}

	provider := store.NewProvider(store.ProviderConfig{
		Backend:     cfg.Backend,
		Open:        Opener(cfg),
		Bootstrap:   Bootstrap(products, logger),
		InitTimeout: cfg.InitTimeout,
		Logger:      logger,
	})

	engine, err := provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var orderOpts []order.Option
	orderOpts = append(orderOpts, order.WithLogger(logger))
	if o.ids != nil {
		orderOpts = append(orderOpts, order.WithIDGenerator(o.ids))
	}
	if o.clock != nil {
		orderOpts = append(orderOpts, order.WithClock(o.clock))
	}
	orders := order.New(engine, orderOpts...)
	repo := repository.New(engine, orders, logger)

	storage := o.storage
	if storage == nil {
		storage = session.NewFileStorage(cfg.StateDir)
	}
	sess := session.Open(storage, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Engine:   engine,
		Repo:     repo,
		Orders:   orders,
		Session:  sess,
		Checkout: checkout.NewService(repo, sess, logger),
		provider: provider,
	}, nil
}

// Close releases the engine.
func (a *App) Close() error {
	return a.provider.Close()
}

func loadCatalog(cfg config.Config) ([]model.Product, error) {
	if cfg.CatalogPath != "" {
		products, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		return products, nil
	}
	products, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load built-in catalog: %w", err)
	}
	return products, nil
}

// Opener returns the engine opener for the configured backend.
func Opener(cfg config.Config) store.OpenFunc {
	return func(ctx context.Context) (*store.Store, error) {
		switch cfg.Backend {
		case store.BackendSQLite:
			return store.Open(ctx, cfg.DatabasePath)
		case store.BackendPostgres:
			return store.OpenPostgres(ctx, cfg.PostgresDSN)
		default:
			return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
		}
	}
}

// Bootstrap creates the schema and then seeds products. Seeding never
// starts unless the schema step succeeded.
func Bootstrap(products []model.Product, logger *slog.Logger) store.BootstrapFunc {
	return func(ctx context.Context, s *store.Store) error {
		if err := store.EnsureSchema(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		n, err := catalog.EnsureSeed(ctx, s, products)
		if err != nil {
			return fmt.Errorf("ensure seed: %w", err)
		}
		if n > 0 {
			logger.Info("catalog seeded", "products", n)
		} else {
			logger.Debug("catalog already present, seed skipped")
		}
		return nil
	}
}

// IsFatal reports whether err means the application cannot run at all.
func IsFatal(err error) bool {
	var initErr *model.EngineInitError
	return errors.As(err, &initErr)
}
