package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron"
)

// cronParser accepts 6-field expressions with seconds granularity.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Window is a recurring maintenance window: runs may start only between a
// window start and start+duration.
type Window struct {
	schedule cron.Schedule
	duration time.Duration
}

// NewWindow parses the window start expression. Duration must be positive.
func NewWindow(start string, duration time.Duration) (*Window, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("window duration must be positive, got %v", duration)
	}
	sched, err := cronParser.Parse(start)
	if err != nil {
		return nil, fmt.Errorf("parse window start %q: %w", start, err)
	}
	return &Window{schedule: sched, duration: duration}, nil
}

// Contains reports whether now falls inside the window opened by the most
// recent start before now.
func (w *Window) Contains(now time.Time) bool {
	start := lastStartBefore(w.schedule, now, w.duration+24*time.Hour)
	if start.IsZero() {
		return false
	}
	return !now.Before(start) && now.Before(start.Add(w.duration))
}

// lastStartBefore walks the schedule forward from now-lookback and returns
// the latest start not after now.
func lastStartBefore(sched cron.Schedule, now time.Time, lookback time.Duration) time.Time {
	const maxIterations = 1000

	check := now.Add(-lookback)
	var last time.Time
	for i := 0; i < maxIterations; i++ {
		next := sched.Next(check)
		if next.IsZero() || next.After(now) {
			break
		}
		// Guard against expressions that never advance.
		if !next.After(check) {
			break
		}
		last = next
		check = next
	}
	return last
}
