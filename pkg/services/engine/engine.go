package engine

import (
	"context"
	"errors"

	"github.com/de-tools/db-custodian/pkg/models/domain"
)

// ErrNoNativeLimit is returned by Database.MaxSizeBytes when the engine keeps no
// per-database size cap and the limit must come from configuration instead.
var ErrNoNativeLimit = errors.New("engine has no native size limit")

// Session is an open control connection to one server. ListDatabases enumerates
// hosted databases from the administrative catalog; system databases never
// appear in the result. OpenDatabase acquires a scoped connection to a single
// database, which the caller must close.
type Session interface {
	ListDatabases(ctx context.Context) ([]domain.DatabaseRecord, error)
	OpenDatabase(ctx context.Context, name string) (Database, error)
	Close() error
}

// Database is a scoped connection to one hosted database.
type Database interface {
	// MaxSizeBytes returns the configured maximum size of the database.
	MaxSizeBytes(ctx context.Context) (int64, error)
	// ClearTable empties the named table to reclaim space.
	ClearTable(ctx context.Context, table string) error
	Close() error
}
