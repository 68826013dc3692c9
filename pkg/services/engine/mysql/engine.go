package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/services/engine"
)

const defaultPort = 3306

// catalogQuery aggregates table sizes per schema. The server's own catalog
// schemas are excluded.
const catalogQuery = `
SELECT table_schema, ROUND(SUM(data_length + index_length) / 1048576, 2) AS size_mb
FROM information_schema.tables
WHERE table_schema NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')
GROUP BY table_schema
ORDER BY table_schema`

type session struct {
	catalog *sql.DB
	open    func(ctx context.Context, database string) (*sql.DB, error)
}

// Factory opens a session against a MySQL server. information_schema is
// reachable from the plain server connection, so no database is selected for
// enumeration. MySQL keeps no per-database size cap.
func Factory(ctx context.Context, profile domain.Profile) (engine.Session, error) {
	open := opener(profile)
	catalog, err := open(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("connect server: %w", err)
	}
	return &session{catalog: catalog, open: open}, nil
}

func (s *session) ListDatabases(ctx context.Context) ([]domain.DatabaseRecord, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := s.catalog.QueryContext(ctx, catalogQuery)
	if err != nil {
		return nil, fmt.Errorf("query schema catalog: %w", err)
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
		port := profile.Port
		if port == 0 {
			port = defaultPort
		}

		cfg := mysql.NewConfig()
		cfg.User = profile.User
		cfg.Passwd = profile.Password
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%d", profile.Host, port)
		cfg.DBName = database

		db, err := sql.Open("mysql", cfg.FormatDSN())
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
		parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
	}
	return strings.Join(parts, ".")
}
