package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/verixa/internal/model"
)

// DefaultInitTimeout bounds engine open plus bootstrap.
const DefaultInitTimeout = 10 * time.Second

// OpenFunc opens a fresh engine handle.
type OpenFunc func(ctx context.Context) (*Store, error)

// BootstrapFunc brings a freshly opened engine to ready-for-queries.
type BootstrapFunc func(ctx context.Context, s *Store) error

// ProviderConfig configures a Provider.
type ProviderConfig struct {
	// Backend names the engine variant, used in diagnostics.
	Backend string

	// Open opens the engine. Required.
	Open OpenFunc

	// Bootstrap runs after Open and before the engine is reported ready.
	// Optional.
	Bootstrap BootstrapFunc

	// InitTimeout bounds Open plus Bootstrap. Zero means DefaultInitTimeout.
	InitTimeout time.Duration

	Logger *slog.Logger
}

// Provider owns the process-wide engine handle.
//
// Thread-safety: Acquire is safe for concurrent use. Concurrent callers
// before the first initialization completes share a single attempt.
type Provider struct {
	cfg   ProviderConfig
	group singleflight.Group

	mu    sync.Mutex
	done  bool
	store *Store
	err   error
}

// NewProvider creates a provider. Nothing is opened until Acquire.
func NewProvider(cfg ProviderConfig) *Provider {
	if cfg.InitTimeout <= 0 {
		cfg.InitTimeout = DefaultInitTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{cfg: cfg}
}

// Acquire returns the engine handle, initializing it on first use.
//
// Initialization is attempted once per Provider: if it fails, every later
// call returns the same *model.EngineInitError.
func (p *Provider) Acquire(ctx context.Context) (*Store, error) {
	if st, err, ok := p.result(); ok {
		return st, err
	}

	v, err, _ := p.group.Do("engine", func() (any, error) {
		if st, err, ok := p.result(); ok {
			return st, err
		}

		st, err := p.initialize(ctx)

		p.mu.Lock()
		p.done, p.store, p.err = true, st, err
		p.mu.Unlock()

		return st, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// Close closes the engine if it was opened.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

func (p *Provider) result() (*Store, error, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store, p.err, p.done
}

func (p *Provider) initialize(ctx context.Context) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.InitTimeout)
	defer cancel()

	logger := p.cfg.Logger.With("backend", p.cfg.Backend)
	start := time.Now()
	logger.Info("initializing engine")

	if p.cfg.Open == nil {
		return nil, p.initError("no opener configured", nil)
	}

	st, err := p.cfg.Open(ctx)
	if err != nil {
		return nil, p.initError("failed to open engine", timeoutCause(ctx, err))
	}

	if p.cfg.Bootstrap != nil {
		if err := p.cfg.Bootstrap(ctx, st); err != nil {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing engine after failed bootstrap", "error", closeErr)
			}
			return nil, p.initError("failed to bootstrap engine", timeoutCause(ctx, err))
		}
	}

	logger.Info("engine ready", "elapsed", time.Since(start))
	return st, nil
}

func (p *Provider) initError(diagnostic string, err error) *model.EngineInitError {
	return &model.EngineInitError{
		Backend:    p.cfg.Backend,
		Diagnostic: diagnostic,
		Err:        err,
	}
}

// timeoutCause makes an init timeout visible in the diagnostic chain.
func timeoutCause(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w (init timeout exceeded)", err)
	}
	return err
}
