package reclaimer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/services/capacity"
	"github.com/de-tools/db-custodian/pkg/services/engine"
)

const bytesPerMB = 1048576

// Options configure a reclamation run.
type Options struct {
	// Threshold is the fraction of maximum capacity above which remediation
	// triggers. Must be in (0, 1].
	Threshold float64
	// Table is the designated table cleared to reclaim space.
	Table string
}

// Reclaimer runs the capacity check over every database of one server: resolve
// current size from the catalog, resolve the maximum, compare against the
// threshold and clear the designated table when usage is above it.
type Reclaimer interface {
	Run(ctx context.Context) (domain.RunReport, error)
}

type reclaimer struct {
	registry engine.Registry
	profile  domain.Profile
	resolver capacity.Resolver
	opts     Options
}

// New builds a Reclaimer bound to one server profile.
func New(registry engine.Registry, profile domain.Profile, resolver capacity.Resolver, opts Options) (Reclaimer, error) {
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be in (0, 1], got %v", opts.Threshold)
	}
	if opts.Table == "" {
		return nil, fmt.Errorf("table cannot be empty")
	}
	return &reclaimer{
		registry: registry,
		profile:  profile,
		resolver: resolver,
		opts:     opts,
	}, nil
}

// Run performs one pass. A catalog failure aborts the run; failures scoped to
// a single database are recorded on its outcome and enumeration continues.
func (r *reclaimer) Run(ctx context.Context) (domain.RunReport, error) {
	logger := zerolog.Ctx(ctx)

	report := domain.RunReport{
		ID:        uuid.NewString(),
		Profile:   r.profile.Name,
		Engine:    r.profile.Engine,
		Threshold: r.opts.Threshold,
		Table:     r.opts.Table,
		StartedAt: time.Now(),
	}

	session, err := r.registry.Open(ctx, r.profile)
	if err != nil {
		return report, fmt.Errorf("connect server %s: %w", r.profile.Name, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close server session")
		}
	}()

	records, err := session.ListDatabases(ctx)
	if err != nil {
		return report, fmt.Errorf("enumerate databases: %w", err)
	}

	for _, record := range records {
		outcome := r.check(ctx, session, record)
		report.Outcomes = append(report.Outcomes, outcome)

		event := logger.Info()
		if outcome.Status == domain.OutcomeFailed {
			event = logger.Warn()
		}
		event.
			Str("database", outcome.Database).
			Str("status", string(outcome.Status)).
			Msg(outcome.String())
	}

	report.FinishedAt = time.Now()
	return report, nil
}

// check applies the decision procedure to one database. The connection is
// scoped to this call and closed on every exit path.
func (r *reclaimer) check(ctx context.Context, session engine.Session, record domain.DatabaseRecord) domain.Outcome {
	logger := zerolog.Ctx(ctx)

	outcome := domain.Outcome{
		Database:      record.Name,
		CurrentSizeMB: record.CurrentSizeMB,
	}

	db, err := session.OpenDatabase(ctx, record.Name)
	if err != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Err = err.Error()
		return outcome
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Str("database", record.Name).Msg("failed to close database connection")
		}
	}()

	maxBytes, err := r.resolver.MaxSizeBytes(ctx, db, record.Name)
	if err != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Err = err.Error()
		return outcome
	}

	outcome.MaxSizeMB = float64(maxBytes) / bytesPerMB
	outcome.TargetSizeMB = outcome.MaxSizeMB * r.opts.Threshold

	if outcome.CurrentSizeMB > outcome.TargetSizeMB {
		if err := db.ClearTable(ctx, r.opts.Table); err != nil {
			outcome.Status = domain.OutcomeFailed
			outcome.Err = err.Error()
			return outcome
		}
		outcome.Status = domain.OutcomeRemediated
		return outcome
	}

	outcome.Status = domain.OutcomeSkipped
	return outcome
}
