package daemon

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// WatchSignals returns a context that is cancelled when a termination signal
// arrives. SIGHUP is accepted and ignored. The returned stop function
// unregisters the handlers and cancels the context.
func WatchSignals(ctx context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGHUP, unix.SIGTERM, unix.SIGINT)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigs:
				if handleSignal(logger, sig) {
					cancel()
					return
				}
			}
		}
	}()

	return ctx, func() {
		signal.Stop(sigs)
		cancel()
	}
}

// handleSignal logs sig and reports whether it requests termination.
func handleSignal(logger *slog.Logger, sig os.Signal) bool {
	switch sig {
	case unix.SIGHUP:
		// Reserved for reload.
		logger.Debug("received SIGHUP - ignoring.")
		return false
	case unix.SIGTERM, unix.SIGINT:
		logger.Info("received " + signalName(sig) + " - exiting.")
		return true
	default:
		logger.Info("received unhandled signal.", "signal", signalName(sig))
		return false
	}
}

func signalName(sig os.Signal) string {
	if s, ok := sig.(syscall.Signal); ok {
		if name := unix.SignalName(s); name != "" {
			return name
		}
	}
	return sig.String()
}
