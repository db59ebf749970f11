package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.olrik.dev/sampled/internal/daemon"
)

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show running background instances",
		Long: `List every detached sampled process started from this executable, with its
PID and start time.`,
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
			printInstances(cmd, instances)
			return nil
		},
	}
}

func printInstances(cmd *cobra.Command, instances []daemon.Instance) {
	out := cmd.OutOrStdout()
	if len(instances) == 0 {
		fmt.Fprintln(out, "sampled is not running")
		return
	}
	for _, inst := range instances {
		started := "unknown"
		if !inst.Started.IsZero() {
			started = fmt.Sprintf("%s (%s ago)", inst.Started.Format(time.DateTime), time.Since(inst.Started).Round(time.Second))
		}
		fmt.Fprintf(out, "PID %d running since %s\n", inst.PID, started)
	}
}
