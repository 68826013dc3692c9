package vertica

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	_ "github.com/vertica/vertica-sql-go"

	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/services/engine"
)

const (
	defaultPort     = 5433
	bytesPerMB      = 1048576
	defaultDatabase = "vertica"
)

// A Vertica cluster hosts a single database, so the catalog is one record:
// the current database with its used storage summed over all locations.
const catalogQuery = `
SELECT current_database() AS name,
       (SELECT COALESCE(SUM(DISK_SPACE_USED_MB), 0)
        FROM DISK_STORAGE
        WHERE STORAGE_USAGE IN ('CATALOG', 'DATA,TEMP')) AS size_mb`

// maxSizeQuery reads total provisioned storage across data locations, in MB.
const maxSizeQuery = `
SELECT SUM(DISK_SPACE_USED_MB + DISK_SPACE_FREE_MB)
FROM DISK_STORAGE
WHERE STORAGE_USAGE IN ('CATALOG', 'DATA,TEMP')`

type session struct {
	catalog *sql.DB
	open    func(ctx context.Context, database string) (*sql.DB, error)
}

// Factory opens a session against a Vertica cluster.
func Factory(ctx context.Context, profile domain.Profile) (engine.Session, error) {
	name := profile.Database
	if name == "" {
		name = defaultDatabase
	}

	open := opener(profile)
	catalog, err := open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("connect cluster: %w", err)
	}
	return &session{catalog: catalog, open: open}, nil
}

func (s *session) ListDatabases(ctx context.Context) ([]domain.DatabaseRecord, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := s.catalog.QueryContext(ctx, catalogQuery)
	if err != nil {
		return nil, fmt.Errorf("query disk storage: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close catalog rows")
		}
	}()

	var records []domain.DatabaseRecord
	for rows.Next() {
		var rec domain.DatabaseRecord
		if err := rows.Scan(&rec.Name, &rec.CurrentSizeMB); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}
	return records, nil
}

func (s *session) OpenDatabase(ctx context.Context, name string) (engine.Database, error) {
	db, err := s.open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("connect database %q: %w", name, err)
	}
	return &database{db: db}, nil
}

func (s *session) Close() error {
	return s.catalog.Close()
}

type database struct {
	db *sql.DB
}

func (d *database) MaxSizeBytes(ctx context.Context) (int64, error) {
	var totalMB sql.NullInt64
	if err := d.db.QueryRowContext(ctx, maxSizeQuery).Scan(&totalMB); err != nil {
		return 0, fmt.Errorf("query storage capacity: %w", err)
	}
	if !totalMB.Valid || totalMB.Int64 <= 0 {
		return 0, engine.ErrNoNativeLimit
	}
	return totalMB.Int64 * bytesPerMB, nil
}

func (d *database) ClearTable(ctx context.Context, table string) error {
	stmt := fmt.Sprintf("TRUNCATE TABLE %s", quoteIdent(table))
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate table %s: %w", table, err)
	}
	return nil
}

func (d *database) Close() error {
	return d.db.Close()
}

func opener(profile domain.Profile) func(ctx context.Context, database string) (*sql.DB, error) {
	return func(ctx context.Context, database string) (*sql.DB, error) {
		port := profile.Port
		if port == 0 {
			port = defaultPort
		}
		connStr := fmt.Sprintf("vertica://%s:%s@%s:%d/%s",
			profile.User, profile.Password, profile.Host, port, database)

		db, err := sql.Open("vertica", connStr)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}
}

func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
