package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/services/engine"
)

const (
	defaultPort     = 5432
	controlDatabase = "postgres"
)

// catalogQuery lists user databases with their on-disk size. Templates and the
// maintenance database are excluded.
const catalogQuery = `
SELECT datname, pg_database_size(datname) / 1048576.0 AS size_mb
FROM pg_database
WHERE NOT datistemplate AND datname <> 'postgres'
ORDER BY datname`

type session struct {
	catalog *sql.DB
	open    func(ctx context.Context, database string) (*sql.DB, error)
}

// Factory opens a session against a Postgres server. Enumeration runs over the
// maintenance database; Postgres keeps no per-database size cap, so capacity
// comes from configuration.
func Factory(ctx context.Context, profile domain.Profile) (engine.Session, error) {
	open := opener(profile)
	catalog, err := open(ctx, controlDatabase)
	if err != nil {
		return nil, fmt.Errorf("connect control database: %w", err)
	}
	return &session{catalog: catalog, open: open}, nil
}

func (s *session) ListDatabases(ctx context.Context) ([]domain.DatabaseRecord, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := s.catalog.QueryContext(ctx, catalogQuery)
	if err != nil {
		return nil, fmt.Errorf("query database catalog: %w", err)
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
	return 0, engine.ErrNoNativeLimit
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
		db, err := sql.Open("pgx", buildDSN(profile, database))
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

func buildDSN(profile domain.Profile, database string) string {
	port := profile.Port
	if port == 0 {
		port = defaultPort
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", profile.Host, port),
		Path:   "/" + database,
	}
	if profile.User != "" {
		u.User = url.UserPassword(profile.User, profile.Password)
	}
	return u.String()
}

func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
