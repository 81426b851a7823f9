package runtime

import (
	"sync"

	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
	"github.com/wippyai/js-runtime/types"
)

// Runtime owns the embedded engine and the adapter depot shared by its
// contexts. A single runtime-wide mutex serializes every operation: the
// backing engine is not safe for concurrent use, so all context and value
// methods take this lock before touching it.
type Runtime struct {
	mu       sync.Mutex
	eng      *engine.Engine
	depot    *Depot
	contexts map[*Context]struct{}
	closed   bool
}

// Option configures a Runtime.
type Option func(*config)

type config struct {
	factories []AdapterFactory
}

// WithFactory prepends a custom adapter factory. Custom factories are
// consulted before the built-in ones, in the order given.
func WithFactory(f AdapterFactory) Option {
	return func(c *config) {
		c.factories = append(c.factories, f)
	}
}

// New creates a runtime with its own engine and adapter depot.
func New(opts ...Option) (*Runtime, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runtime{
		eng:      engine.New(),
		depot:    NewDepot(cfg.factories...),
		contexts: make(map[*Context]struct{}),
	}, nil
}

// NewContext creates an independent evaluation context. Contexts share
// the runtime's lock and adapter depot but nothing engine-side.
func (r *Runtime) NewContext() (*Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.Closed("runtime")
	}
	ec, err := r.eng.NewContext()
	if err != nil {
		return nil, err
	}
	ctx := &Context{rt: r, ec: ec}
	ctx.tracker = newTracker(ctx)
	r.contexts[ctx] = struct{}{}
	return ctx, nil
}

// Adapter returns the adapter for the described type, building and
// caching it on first use.
func (r *Runtime) Adapter(desc types.Descriptor) (TypeAdapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.Closed("runtime")
	}
	return r.depot.Adapter(desc)
}

// Close shuts the runtime down: outstanding contexts are closed first,
// force-releasing their live handles, then the engine. Operations on the
// runtime and its contexts fail with a lifecycle error afterwards.
// Idempotent.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	var firstErr error
	for ctx := range r.contexts {
		if err := ctx.closeLocked(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.contexts = nil
	if err := r.eng.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
