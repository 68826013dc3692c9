package capacity

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/services/engine"
)

const bytesPerMB = 1048576

// ErrUnresolved means no configured source could provide a maximum size.
var ErrUnresolved = errors.New("maximum size could not be resolved")

// Resolver yields the maximum allowed size in bytes for one database.
type Resolver interface {
	MaxSizeBytes(ctx context.Context, db engine.Database, name string) (int64, error)
}

type nativeResolver struct{}

// Native reads the limit from the engine's own metadata.
func Native() Resolver {
	return nativeResolver{}
}

func (nativeResolver) MaxSizeBytes(ctx context.Context, db engine.Database, name string) (int64, error) {
	return db.MaxSizeBytes(ctx)
}

type staticResolver struct {
	bytes int64
}

// Static applies a fixed limit from configuration, given in MB.
func Static(mb int64) Resolver {
	return staticResolver{bytes: mb * bytesPerMB}
}

func (r staticResolver) MaxSizeBytes(ctx context.Context, db engine.Database, name string) (int64, error) {
	return r.bytes, nil
}

type chain struct {
	resolvers []Resolver
}

// NewChain tries resolvers in order, skipping those without a native limit.
func NewChain(resolvers ...Resolver) Resolver {
	return chain{resolvers: resolvers}
}

func (c chain) MaxSizeBytes(ctx context.Context, db engine.Database, name string) (int64, error) {
	for _, r := range c.resolvers {
		size, err := r.MaxSizeBytes(ctx, db, name)
		if errors.Is(err, engine.ErrNoNativeLimit) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return size, nil
	}
	return 0, fmt.Errorf("%w: configure max_size_mb or rds_instance", ErrUnresolved)
}

// ForProfile assembles the resolver chain for a server profile: the engine's
// native limit first, then the static limit, then RDS allocated storage.
func ForProfile(ctx context.Context, profile domain.Profile) (Resolver, error) {
	resolvers := []Resolver{Native()}
	if profile.MaxSizeMB > 0 {
		resolvers = append(resolvers, Static(profile.MaxSizeMB))
	}
	if profile.RDSInstance != "" {
		client, err := NewRDSClient(ctx, profile.RDSProfile)
		if err != nil {
			return nil, err
		}
		resolvers = append(resolvers, RDS(client, profile.RDSInstance))
	}
	return NewChain(resolvers...), nil
}
