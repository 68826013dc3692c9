package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	handlers "github.com/de-tools/db-custodian/pkg/handlers/custodian"
	"github.com/de-tools/db-custodian/pkg/metrics"
	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/runtime/terminal/export"
	"github.com/de-tools/db-custodian/pkg/server"
	"github.com/de-tools/db-custodian/pkg/services/capacity"
	"github.com/de-tools/db-custodian/pkg/services/config"
	"github.com/de-tools/db-custodian/pkg/services/custodian"
	"github.com/de-tools/db-custodian/pkg/services/engine"
	"github.com/de-tools/db-custodian/pkg/services/engine/mysql"
	"github.com/de-tools/db-custodian/pkg/services/engine/postgres"
	"github.com/de-tools/db-custodian/pkg/services/engine/snowflake"
	"github.com/de-tools/db-custodian/pkg/services/engine/sqlserver"
	"github.com/de-tools/db-custodian/pkg/services/engine/vertica"
	"github.com/de-tools/db-custodian/pkg/services/reclaimer"
	"github.com/de-tools/db-custodian/pkg/services/schedule"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "custodiand",
		Short: "Run the capacity check daemon",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "custodian.yaml",
		"Path to the daemon configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx, cancel := context.WithCancel(logger.WithContext(cmd.Context()))
	defer cancel()

	cfg, err := config.LoadDaemon(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load daemon config: %w", err)
	}

	profilesPath := cfg.ProfilesFile
	if profilesPath == "" {
		profilesPath, err = config.DefaultProfilesPath()
		if err != nil {
			return err
		}
	}

	profiles, err := config.NewRegistry(profilesPath)
	if err != nil {
		return fmt.Errorf("failed to create profile registry: %w", err)
	}

	profile, err := profiles.GetProfile(ctx, cfg.Profile)
	if err != nil {
		return err
	}

	table := cfg.Table
	if table == "" {
		table = profile.Table
	}

	resolver, err := capacity.ForProfile(ctx, profile)
	if err != nil {
		return err
	}

	registry := engine.NewRegistry(map[domain.EngineKind]engine.Factory{
		domain.EngineSQLServer: sqlserver.Factory,
		domain.EnginePostgres:  postgres.Factory,
		domain.EngineMySQL:     mysql.Factory,
		domain.EngineSnowflake: snowflake.Factory,
		domain.EngineVertica:   vertica.Factory,
	})

	r, err := reclaimer.New(registry, profile, resolver, reclaimer.Options{
		Threshold: cfg.Threshold,
		Table:     table,
	})
	if err != nil {
		return err
	}

	promRegistry := prometheus.NewRegistry()
	runMetrics := metrics.New()
	if err := runMetrics.Register(promRegistry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	opts := custodian.Options{Metrics: runMetrics}
	if cfg.Export != nil {
		exporter, err := export.NewS3ReporterFromConfig(ctx, *cfg.Export)
		if err != nil {
			return err
		}
		opts.Exporter = exporter
	}
	service := custodian.New(r, opts)

	logger.Info().Msgf("Checking profile `%s` (%s) every `%s`, threshold %v, table `%s`.",
		profile.Name, profile.Engine, cfg.Schedule, cfg.Threshold, table)

	if cfg.Schedule != "" {
		var window *schedule.Window
		if cfg.Window != nil {
			window, err = schedule.NewWindow(cfg.Window.Start, cfg.Window.Duration)
			if err != nil {
				return err
			}
		}

		scheduler, err := schedule.NewScheduler(cfg.Schedule, window, func(ctx context.Context) error {
			_, err := service.RunNow(ctx)
			return err
		})
		if err != nil {
			return err
		}

		go scheduler.Start(ctx)
	}

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Listen,
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Custodian: service,
			Gatherer:  promRegistry,
			Info: handlers.Info{
				Profile:   profile,
				Threshold: cfg.Threshold,
				Table:     table,
			},
		},
	})

	return webAPI.Start()
}
