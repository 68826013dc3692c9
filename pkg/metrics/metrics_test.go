package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/db-custodian/pkg/models/domain"
)

func TestObserve_CountsRunsAndOutcomes(t *testing.T) {
	m := New()
	registry := prometheus.NewRegistry()
	require.NoError(t, m.Register(registry))

	finished := time.Date(2026, 8, 25, 3, 0, 0, 0, time.UTC)
	m.Observe(domain.RunReport{
		FinishedAt: finished,
		Outcomes: []domain.Outcome{
			{Database: "sales", CurrentSizeMB: 850, TargetSizeMB: 800, Status: domain.OutcomeRemediated},
			{Database: "archive", CurrentSizeMB: 100, TargetSizeMB: 800, Status: domain.OutcomeSkipped},
			{Database: "broken", CurrentSizeMB: 900, Status: domain.OutcomeFailed, Err: "connection refused"},
		},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsFailed))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DatabasesChecked))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(m.LastRunTimestamp))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("sales", "remediated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("archive", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("broken", "failed")))

	assert.Equal(t, 850.0, testutil.ToFloat64(m.CurrentSizeMB.WithLabelValues("sales")))
	assert.Equal(t, 800.0, testutil.ToFloat64(m.TargetSizeMB.WithLabelValues("sales")))
}

func TestObserve_CleanRunDoesNotIncrementFailed(t *testing.T) {
	m := New()
	registry := prometheus.NewRegistry()
	require.NoError(t, m.Register(registry))

	m.Observe(domain.RunReport{
		FinishedAt: time.Now(),
		Outcomes: []domain.Outcome{
			{Database: "sales", CurrentSizeMB: 100, TargetSizeMB: 800, Status: domain.OutcomeSkipped},
		},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RunsFailed))
}
