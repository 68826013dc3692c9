package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/runtime/terminal/export"
	"github.com/de-tools/db-custodian/pkg/services/capacity"
	"github.com/de-tools/db-custodian/pkg/services/config"
	"github.com/de-tools/db-custodian/pkg/services/engine"
	"github.com/de-tools/db-custodian/pkg/services/reclaimer"
)

// Reporter renders a finished run report.
type Reporter interface {
	Handle(report domain.RunReport) error
}

// ReporterFactory builds a Reporter for the requested output format.
type ReporterFactory func(w io.Writer, format string) (Reporter, error)

type CheckCmd struct {
	profilesPath string
	profile      string
	threshold    float64
	table        string
	output       string
	s3Bucket     string
	s3Prefix     string
	registry     engine.Registry
	newReporter  ReporterFactory
}

func NewCheckCmd(registry engine.Registry, newReporter ReporterFactory) *cobra.Command {
	cc := &CheckCmd{registry: registry, newReporter: newReporter}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the capacity check against one server profile",
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.profile, "profile", "", "Server profile name from the profiles file")
	cmd.Flags().StringVar(&cc.profilesPath, "profiles", "", "Path to the profiles file (default is $HOME/.dbcustodian/profiles)")
	cmd.Flags().Float64Var(&cc.threshold, "threshold", 0.8, "Fraction of maximum capacity above which the designated table is cleared")
	cmd.Flags().StringVar(&cc.table, "table", "", "Designated table to clear (defaults to the profile's table)")
	cmd.Flags().StringVar(&cc.output, "output", "text", "Output format: text, json or yaml")
	cmd.Flags().StringVar(&cc.s3Bucket, "s3-bucket", "", "Upload the JSON report to this S3 bucket")
	cmd.Flags().StringVar(&cc.s3Prefix, "s3-prefix", "", "Key prefix for the uploaded report")

	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func (cc *CheckCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path := cc.profilesPath
	if path == "" {
		var err error
		path, err = config.DefaultProfilesPath()
		if err != nil {
			return err
		}
	}

	profiles, err := config.NewRegistry(path)
	if err != nil {
		return err
	}

	profile, err := profiles.GetProfile(ctx, cc.profile)
	if err != nil {
		return err
	}

	table := cc.table
	if table == "" {
		table = profile.Table
	}
	if table == "" {
		return fmt.Errorf("no table configured: pass --table or set table in profile %s", cc.profile)
	}

	resolver, err := capacity.ForProfile(ctx, profile)
	if err != nil {
		return err
	}

	r, err := reclaimer.New(cc.registry, profile, resolver, reclaimer.Options{
		Threshold: cc.threshold,
		Table:     table,
	})
	if err != nil {
		return err
	}

	report, err := r.Run(ctx)
	if err != nil {
		return err
	}

	reporter, err := cc.newReporter(cmd.OutOrStdout(), cc.output)
	if err != nil {
		return err
	}
	if err := reporter.Handle(report); err != nil {
		return err
	}

	if cc.s3Bucket != "" {
		exporter, err := export.NewS3ReporterFromConfig(ctx, config.S3Export{
			Bucket: cc.s3Bucket,
			Prefix: cc.s3Prefix,
		})
		if err != nil {
			return err
		}
		if err := exporter.Export(ctx, report); err != nil {
			return err
		}
	}

	if report.Failed() {
		return fmt.Errorf("%d database(s) failed during the run", report.CountStatus(domain.OutcomeFailed))
	}
	return nil
}
