package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
	"github.com/rs/zerolog"

	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/services/engine"
)

const (
	defaultPort     = 1433
	controlDatabase = "master"
	tokenScope      = "https://database.windows.net/.default"
)

// catalogQuery joins database metadata with the latest recorded resource usage
// sample per database. The control database is excluded from candidates.
const catalogQuery = `
SELECT d.name, MAX(ru.storage_in_megabytes) AS storage_in_megabytes
FROM sys.databases AS d
JOIN sys.resource_usage AS ru ON ru.database_name = d.name
WHERE d.name <> 'master'
GROUP BY d.name`

// maxSizeQuery reads the configured cap of the current database, in bytes.
const maxSizeQuery = `SELECT CONVERT(bigint, DATABASEPROPERTYEX(DB_NAME(), 'MaxSizeInBytes'))`

type session struct {
	catalog *sql.DB
	open    func(ctx context.Context, database string) (*sql.DB, error)
}

// Factory opens a session against a SQL Server. The control connection targets
// the master database, which holds the administrative catalog.
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
		return nil, fmt.Errorf("query administrative catalog: %w", err)
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
	var size sql.NullInt64
	if err := d.db.QueryRowContext(ctx, maxSizeQuery).Scan(&size); err != nil {
		return 0, fmt.Errorf("query max size: %w", err)
	}
	if !size.Valid || size.Int64 <= 0 {
		return 0, engine.ErrNoNativeLimit
	}
	return size.Int64, nil
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
		var db *sql.DB
		var err error
		if profile.Auth == domain.AuthAzureAD {
			db, err = openTokenDB(profile, database)
		} else {
			db, err = sql.Open("sqlserver", buildDSN(profile, database))
		}
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
		Scheme: "sqlserver",
		Host:   fmt.Sprintf("%s:%d", profile.Host, port),
	}
	if profile.User != "" {
		u.User = url.UserPassword(profile.User, profile.Password)
	}
	q := url.Values{}
	q.Set("database", database)
	u.RawQuery = q.Encode()
	return u.String()
}

// openTokenDB authenticates with an Azure AD access token instead of a SQL
// login. The credential chain covers CLI, environment and managed identity.
func openTokenDB(profile domain.Profile, database string) (*sql.DB, error) {
	cfg, err := msdsn.Parse(buildDSN(profile, database))
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("create azure credential: %w", err)
	}

	connector, err := mssql.NewSecurityTokenConnector(cfg, func(ctx context.Context) (string, error) {
		token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{tokenScope}})
		if err != nil {
			return "", err
		}
		return token.Token, nil
	})
	if err != nil {
		return nil, fmt.Errorf("create token connector: %w", err)
	}

	return sql.OpenDB(connector), nil
}

// quoteIdent brackets a possibly schema-qualified identifier.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = "[" + strings.ReplaceAll(p, "]", "]]") + "]"
	}
	return strings.Join(parts, ".")
}
