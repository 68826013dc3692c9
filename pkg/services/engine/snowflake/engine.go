package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/services/engine"
)

// catalogQuery reads the latest storage sample per database from the account
// usage share. Snowflake's own databases are excluded.
const catalogQuery = `
SELECT database_name, average_database_bytes / 1048576 AS size_mb
FROM snowflake.account_usage.database_storage_usage_history
WHERE usage_date = (SELECT MAX(usage_date) FROM snowflake.account_usage.database_storage_usage_history)
  AND deleted IS NULL
  AND database_name NOT IN ('SNOWFLAKE', 'SNOWFLAKE_SAMPLE_DATA')
ORDER BY database_name`

type session struct {
	catalog *sql.DB
	open    func(ctx context.Context, database string) (*sql.DB, error)
}

// Factory opens a session against a Snowflake account. Storage accounting
// lives in the account usage share, so enumeration needs no database context.
// Snowflake has no per-database size cap; capacity comes from configuration.
func Factory(ctx context.Context, profile domain.Profile) (engine.Session, error) {
	open := opener(profile)
	catalog, err := open(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("connect account: %w", err)
	}
	return &session{catalog: catalog, open: open}, nil
}

func (s *session) ListDatabases(ctx context.Context) ([]domain.DatabaseRecord, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := s.catalog.QueryContext(ctx, catalogQuery)
	if err != nil {
		return nil, fmt.Errorf("query storage usage history: %w", err)
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
		cfg := &sf.Config{
			Account:   profile.Account,
			User:      profile.User,
			Password:  profile.Password,
			Warehouse: profile.Warehouse,
			Database:  database,
		}

		dsn, err := sf.DSN(cfg)
		if err != nil {
			return nil, fmt.Errorf("build dsn: %w", err)
		}

		db, err := sql.Open("snowflake", dsn)
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
