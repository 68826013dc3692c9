package custodian

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/de-tools/db-custodian/pkg/metrics"
	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/services/reclaimer"
)

// ErrRunInProgress is returned when a run is requested while another one is
// still executing. Runs never overlap.
var ErrRunInProgress = errors.New("a run is already in progress")

const defaultHistorySize = 50

// Exporter receives finished run reports.
type Exporter interface {
	Export(ctx context.Context, report domain.RunReport) error
}

// Service executes capacity check runs and keeps a bounded in-memory window
// of recent reports. Nothing is persisted between restarts.
type Service interface {
	// RunNow executes one run. Concurrent calls beyond the first fail with
	// ErrRunInProgress.
	RunNow(ctx context.Context) (domain.RunReport, error)
	// LastReport returns the most recent report, if any run has finished.
	LastReport() (domain.RunReport, bool)
	// Reports returns recent reports, newest first.
	Reports() []domain.RunReport
	// Runs returns the number of finished runs since startup.
	Runs() int
}

type Options struct {
	// History bounds the report window; defaults to 50.
	History int
	Metrics *metrics.Metrics
	// Exporter, when set, receives every finished report. Export failures are
	// logged, not fatal.
	Exporter Exporter
}

type service struct {
	reclaimer reclaimer.Reclaimer
	opts      Options

	running sync.Mutex

	mu      sync.RWMutex
	reports []domain.RunReport
	runs    int
}

func New(r reclaimer.Reclaimer, opts Options) Service {
	if opts.History <= 0 {
		opts.History = defaultHistorySize
	}
	return &service{reclaimer: r, opts: opts}
}

func (s *service) RunNow(ctx context.Context) (domain.RunReport, error) {
	if !s.running.TryLock() {
		return domain.RunReport{}, ErrRunInProgress
	}
	defer s.running.Unlock()

	logger := zerolog.Ctx(ctx)

	report, err := s.reclaimer.Run(ctx)
	if err != nil {
		return report, err
	}

	s.record(report)
	if s.opts.Metrics != nil {
		s.opts.Metrics.Observe(report)
	}
	if s.opts.Exporter != nil {
		if err := s.opts.Exporter.Export(ctx, report); err != nil {
			logger.Error().Err(err).Str("run_id", report.ID).Msg("failed to export run report")
		}
	}
	return report, nil
}

func (s *service) record(report domain.RunReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)
	if len(s.reports) > s.opts.History {
		s.reports = s.reports[len(s.reports)-s.opts.History:]
	}
	s.runs++
}

func (s *service) LastReport() (domain.RunReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.reports) == 0 {
		return domain.RunReport{}, false
	}
	return s.reports[len(s.reports)-1], true
}

func (s *service) Reports() []domain.RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RunReport, 0, len(s.reports))
	for i := len(s.reports) - 1; i >= 0; i-- {
		out = append(out, s.reports[i])
	}
	return out
}

func (s *service) Runs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs
}
