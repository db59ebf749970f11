package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Channel is the logging channel the daemon writes through and closes on
// shutdown.
type Channel interface {
	Logger() *slog.Logger
	Close() error
}

// Config holds everything Daemon needs. Zero values select the real
// process, the real clock and LogInterval.
type Config struct {
	Name       string // program name used in the startup record
	Channel    Channel
	System     System
	Launcher   *Launcher
	Foreground bool
	Detached   bool
	Interval   time.Duration
	Now        func() time.Time

	// Signals installs the termination handling, WatchSignals by default.
	Signals func(context.Context, *slog.Logger) (context.Context, context.CancelFunc)
}

// Daemon runs the daemonization sequence followed by the time logger.
type Daemon struct {
	name       string
	channel    Channel
	logger     *slog.Logger
	daemonizer *Daemonizer
	ticker     *Ticker
	signals    func(context.Context, *slog.Logger) (context.Context, context.CancelFunc)
}

// New creates a Daemon from cfg.
func New(cfg Config) *Daemon {
	logger := cfg.Channel.Logger()

	system := cfg.System
	if system == nil {
		system = OS{}
	}
	launcher := cfg.Launcher
	if launcher == nil {
		launcher = &Launcher{}
	}
	signals := cfg.Signals
	if signals == nil {
		signals = WatchSignals
	}

	return &Daemon{
		name:    cfg.Name,
		channel: cfg.Channel,
		logger:  logger,
		daemonizer: &Daemonizer{
			Logger:     logger,
			System:     system,
			Launcher:   launcher,
			Foreground: cfg.Foreground,
			Detached:   cfg.Detached,
		},
		ticker: &Ticker{
			Logger:   logger,
			Interval: cfg.Interval,
			Now:      cfg.Now,
		},
		signals: signals,
	}
}

// Run returns nil in the launching process once the child is started, and
// nil in the child after a termination signal. Any other outcome is a
// *StepError.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.daemonizer.Detached {
		d.logger.Info(fmt.Sprintf("Starting %s", d.name))
	}

	launched, err := d.daemonizer.Detach()
	if err != nil {
		return err
	}
	if launched {
		return nil
	}

	if err := d.daemonizer.Daemonize(); err != nil {
		return err
	}

	ctx, stop := d.signals(ctx, d.logger)
	defer stop()

	err = d.ticker.Run(ctx)
	if ctx.Err() == nil {
		if err == nil {
			err = errors.New("time logger returned")
		}
		return d.daemonizer.fail(StepLoop, ExitWTF, err)
	}

	d.shutdown()
	return nil
}

func (d *Daemon) shutdown() {
	d.logger.Debug("Closing logging channel")
	d.channel.Close()
}
