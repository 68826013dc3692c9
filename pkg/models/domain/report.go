package domain

import (
	"fmt"
	"strconv"
	"time"
)

type OutcomeStatus string

const (
	OutcomeRemediated OutcomeStatus = "remediated"
	OutcomeSkipped    OutcomeStatus = "skipped"
	OutcomeFailed     OutcomeStatus = "failed"
)

// Outcome records the decision taken for a single database during a run.
type Outcome struct {
	Database      string
	CurrentSizeMB float64
	MaxSizeMB     float64
	TargetSizeMB  float64
	Status        OutcomeStatus
	Err           string
}

// String renders the per-database report line.
func (o Outcome) String() string {
	switch o.Status {
	case OutcomeRemediated:
		return fmt.Sprintf("Perform action on %s (%s MB > %s MB)",
			o.Database, formatMB(o.CurrentSizeMB), formatMB(o.TargetSizeMB))
	case OutcomeFailed:
		return fmt.Sprintf("Failed to check %s: %s", o.Database, o.Err)
	default:
		return fmt.Sprintf("Do not perform action on %s (%s MB <= %s MB)",
			o.Database, formatMB(o.CurrentSizeMB), formatMB(o.TargetSizeMB))
	}
}

// RunReport is the aggregate result of one reclamation pass over a server.
type RunReport struct {
	ID         string
	Profile    string
	Engine     EngineKind
	Threshold  float64
	Table      string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome
}

// Failed reports whether any database could not be checked or remediated.
func (r RunReport) Failed() bool {
	return r.CountStatus(OutcomeFailed) > 0
}

func (r RunReport) CountStatus(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

func formatMB(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
