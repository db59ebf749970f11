package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.olrik.dev/sampled/internal/daemon"
)

func NewStopCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:     "stop",
		Aliases: []string{"shutdown", "quit"},
		Short:   "Stop running background instances",
		Long: `Send SIGTERM to every detached sampled process started from this executable
and wait for each to log its shutdown record and exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to resolve executable: %w", err)
			}
			instances, err := daemon.FindInstances(cmd.Context(), exe)
			if err != nil {
				return err
			}
			if len(instances) == 0 {
				slog.Warn("sampled is not running")
				return nil
			}

			var errs []error
			for _, inst := range instances {
				if err := daemon.StopInstance(cmd.Context(), inst, timeout, 100*time.Millisecond); err != nil {
					slog.Error("Failed to stop instance", "pid", inst.PID, "error", err)
					errs = append(errs, err)
					continue
				}
				slog.Info("Stopped", "pid", inst.PID)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "how long to wait for each instance to exit")

	return cmd
}
