package terminal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/services/engine"
)

// fakeSession serves a fixed catalog and counts remediations.
type fakeSession struct {
	records []domain.DatabaseRecord
	clears  map[string]int
}

func (f *fakeSession) ListDatabases(ctx context.Context) ([]domain.DatabaseRecord, error) {
	return f.records, nil
}

func (f *fakeSession) OpenDatabase(ctx context.Context, name string) (engine.Database, error) {
	return &fakeDatabase{session: f, name: name}, nil
}

func (f *fakeSession) Close() error { return nil }

type fakeDatabase struct {
	session *fakeSession
	name    string
}

func (d *fakeDatabase) MaxSizeBytes(ctx context.Context) (int64, error) {
	return 0, engine.ErrNoNativeLimit
}

func (d *fakeDatabase) ClearTable(ctx context.Context, table string) error {
	d.session.clears[d.name]++
	return nil
}

func (d *fakeDatabase) Close() error { return nil }

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCLI_CheckCommand(t *testing.T) {
	session := &fakeSession{
		records: []domain.DatabaseRecord{
			{Name: "busy", CurrentSizeMB: 900},
			{Name: "quiet", CurrentSizeMB: 100},
		},
		clears: map[string]int{},
	}

	registry := engine.NewRegistry(map[domain.EngineKind]engine.Factory{
		domain.EnginePostgres: func(ctx context.Context, profile domain.Profile) (engine.Session, error) {
			return session, nil
		},
	})

	profilesPath := writeProfiles(t, `
[reporting]
engine = postgres
host = reporting.internal
user = custodian
password = secret
max_size_mb = 1000
table = event_log
`)

	var out bytes.Buffer
	cli := NewCLI(Options{Registry: registry, Output: &out})
	cli.rootCmd.SetArgs([]string{
		"check",
		"--profile", "reporting",
		"--profiles", profilesPath,
	})

	err := cli.ExecuteContext(context.Background())
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "Perform action on busy (900 MB > 800 MB)")
	assert.Contains(t, output, "Do not perform action on quiet (100 MB <= 800 MB)")
	assert.Equal(t, 1, session.clears["busy"])
	assert.Zero(t, session.clears["quiet"])
}

func TestCLI_EnginesCommand(t *testing.T) {
	registry := engine.NewRegistry(map[domain.EngineKind]engine.Factory{
		domain.EnginePostgres: func(ctx context.Context, profile domain.Profile) (engine.Session, error) {
			return nil, nil
		},
		domain.EngineMySQL: func(ctx context.Context, profile domain.Profile) (engine.Session, error) {
			return nil, nil
		},
	})

	var out bytes.Buffer
	cli := NewCLI(Options{Registry: registry, Output: &out})
	cli.rootCmd.SetArgs([]string{"engines"})

	require.NoError(t, cli.ExecuteContext(context.Background()))
	assert.Equal(t, "mysql\npostgres\n", out.String())
}
