package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/db-custodian/pkg/models/domain"
)

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRegistry_GetProfile_ReadsAllKeys(t *testing.T) {
	path := writeProfiles(t, `
[prod]
engine = sqlserver
host = prod.database.windows.net
port = 1433
user = custodian
password = secret
auth = azuread
table = dbo.audit_log
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	profile, err := registry.GetProfile(context.Background(), "prod")
	require.NoError(t, err)

	assert.Equal(t, "prod", profile.Name)
	assert.Equal(t, domain.EngineSQLServer, profile.Engine)
	assert.Equal(t, "prod.database.windows.net", profile.Host)
	assert.Equal(t, 1433, profile.Port)
	assert.Equal(t, "custodian", profile.User)
	assert.Equal(t, "secret", profile.Password)
	assert.Equal(t, domain.AuthAzureAD, profile.Auth)
	assert.Equal(t, "dbo.audit_log", profile.Table)
}

func TestRegistry_GetProfile_CapacityKeys(t *testing.T) {
	path := writeProfiles(t, `
[reporting]
engine = postgres
host = reporting.internal
user = custodian
password = secret
max_size_mb = 2048
rds_instance = reporting-db
rds_profile = production
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	profile, err := registry.GetProfile(context.Background(), "reporting")
	require.NoError(t, err)

	assert.Equal(t, domain.AuthSQL, profile.Auth)
	assert.Equal(t, int64(2048), profile.MaxSizeMB)
	assert.Equal(t, "reporting-db", profile.RDSInstance)
	assert.Equal(t, "production", profile.RDSProfile)
}

func TestRegistry_GetProfile_UnknownName(t *testing.T) {
	path := writeProfiles(t, `
[prod]
engine = sqlserver
host = example
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	_, err = registry.GetProfile(context.Background(), "staging")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestRegistry_GetProfile_RejectsUnsupportedEngine(t *testing.T) {
	path := writeProfiles(t, `
[legacy]
engine = oracle
host = example
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	_, err = registry.GetProfile(context.Background(), "legacy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported engine")
}

func TestRegistry_GetProfile_RequiresEngine(t *testing.T) {
	path := writeProfiles(t, `
[incomplete]
host = example
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	_, err = registry.GetProfile(context.Background(), "incomplete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine is required")
}

func TestRegistry_GetProfiles_ListsAllSections(t *testing.T) {
	path := writeProfiles(t, `
[prod]
engine = sqlserver
host = one

[analytics]
engine = snowflake
account = org-acct
user = custodian
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	profiles, err := registry.GetProfiles(context.Background())
	require.NoError(t, err)

	require.Len(t, profiles, 2)
	names := []string{profiles[0].Name, profiles[1].Name}
	assert.Contains(t, names, "prod")
	assert.Contains(t, names, "analytics")
}

func TestNewRegistry_MissingFile(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
