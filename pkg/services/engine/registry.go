package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/de-tools/db-custodian/pkg/models/domain"
)

// ErrUnknownEngine is returned by Open for engine kinds with no registered
// factory.
var ErrUnknownEngine = errors.New("unknown engine")

// Factory is a function type that opens a Session for a server profile
type Factory func(ctx context.Context, profile domain.Profile) (Session, error)

// Registry manages engine session factories
type Registry interface {
	// Register adds a new engine factory
	Register(kind domain.EngineKind, factory Factory) error
	// Open connects to the server described by the profile using the engine
	// registered for its kind
	Open(ctx context.Context, profile domain.Profile) (Session, error)
	// Kinds returns a list of registered engine kinds
	Kinds() []domain.EngineKind
}

type registry struct {
	mu        sync.RWMutex
	factories map[domain.EngineKind]Factory
}

// NewRegistry creates a new engine registry
func NewRegistry(factories map[domain.EngineKind]Factory) Registry {
	r := &registry{
		factories: make(map[domain.EngineKind]Factory),
	}
	for kind, factory := range factories {
		r.factories[kind] = factory
	}
	return r
}

func (r *registry) Register(kind domain.EngineKind, factory Factory) error {
	if kind == "" {
		return fmt.Errorf("engine kind cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("engine %q is already registered", kind)
	}

	r.factories[kind] = factory
	return nil
}

func (r *registry) Open(ctx context.Context, profile domain.Profile) (Session, error) {
	r.mu.RLock()
	factory, exists := r.factories[profile.Engine]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, profile.Engine)
	}

	return factory(ctx, profile)
}

func (r *registry) Kinds() []domain.EngineKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.EngineKind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	return kinds
}
