package daemon

import (
	"context"
	"log/slog"
	"time"
)

// LogInterval is the fixed spacing between time records.
const LogInterval = time.Second

// Ticker logs the local wall-clock time once per interval.
type Ticker struct {
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time
}

// Run logs until ctx is cancelled and returns ctx.Err().
func (t *Ticker) Run(ctx context.Context) error {
	interval := t.Interval
	if interval <= 0 {
		interval = LogInterval
	}
	now := t.Now
	if now == nil {
		now = time.Now
	}

	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		t.Logger.Info("Current system time is: " + Asctime(now().Local()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

// Asctime renders t the way C's asctime does, trailing newline included:
// "Wed Jun 30 21:49:08 2021\n".
func Asctime(t time.Time) string {
	return t.Format(time.ANSIC) + "\n"
}
