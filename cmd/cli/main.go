package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/runtime/terminal"
	"github.com/de-tools/db-custodian/pkg/services/engine"
	"github.com/de-tools/db-custodian/pkg/services/engine/mysql"
	"github.com/de-tools/db-custodian/pkg/services/engine/postgres"
	"github.com/de-tools/db-custodian/pkg/services/engine/snowflake"
	"github.com/de-tools/db-custodian/pkg/services/engine/sqlserver"
	"github.com/de-tools/db-custodian/pkg/services/engine/vertica"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cli := terminal.NewCLI(terminal.Options{
		Registry: engine.NewRegistry(map[domain.EngineKind]engine.Factory{
			domain.EngineSQLServer: sqlserver.Factory,
			domain.EnginePostgres:  postgres.Factory,
			domain.EngineMySQL:     mysql.Factory,
			domain.EngineSnowflake: snowflake.Factory,
			domain.EngineVertica:   vertica.Factory,
		}),
		Output: os.Stdout,
	})

	if err := cli.ExecuteContext(logger.WithContext(context.Background())); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
