package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
)

// periodic implements cron.Schedule for "every interval, with an optional
// one-time initial delay before the first run" cadences (spec §4.5's
// "first run at start" / "first run +2 min" notes), which a bare cron
// expression cannot express.
type periodic struct {
	interval   time.Duration
	firstDelay time.Duration
	fired      bool
}

// every builds a schedule that fires every interval, the first fire coming
// one interval after the scheduler starts.
func every(interval time.Duration) cron.Schedule {
	return &periodic{interval: interval, firstDelay: interval}
}

// everyAfter builds a schedule whose first fire is delayed by firstDelay,
// then repeats every interval.
func everyAfter(interval, firstDelay time.Duration) cron.Schedule {
	return &periodic{interval: interval, firstDelay: firstDelay}
}

func (p *periodic) Next(t time.Time) time.Time {
	if !p.fired {
		p.fired = true
		return t.Add(p.firstDelay)
	}
	return t.Add(p.interval)
}
