package domain

import "fmt"

type EngineKind string

const (
	EngineSQLServer EngineKind = "sqlserver"
	EnginePostgres  EngineKind = "postgres"
	EngineMySQL     EngineKind = "mysql"
	EngineSnowflake EngineKind = "snowflake"
	EngineVertica   EngineKind = "vertica"
)

type AuthMode string

const (
	AuthSQL     AuthMode = "sql"
	AuthAzureAD AuthMode = "azuread"
)

// Profile is a named server entry from the profiles file. It carries everything
// needed to reach one server: engine kind, address, credentials, the designated
// table to clear, and how the maximum database size is resolved.
type Profile struct {
	Name     string
	Engine   EngineKind
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Auth     AuthMode
	Table    string

	// Capacity settings. MaxSizeMB configures a static limit for engines
	// without a native per-database cap; RDSInstance resolves the limit from
	// the instance's allocated storage instead.
	MaxSizeMB   int64
	RDSInstance string
	RDSProfile  string

	// Snowflake connection extras.
	Account   string
	Warehouse string
}

func (p Profile) String() string {
	return fmt.Sprintf("%s:%s", p.Engine, p.Name)
}
