package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.olrik.dev/sampled/internal/core"
	"go.olrik.dev/sampled/internal/daemon"
	"go.olrik.dev/sampled/internal/logging"
)

// flags holds the global flags shared by every command.
type flags struct {
	configPath string
	verbose    int
	foreground bool
}

func NewRootCommand() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:   "sampled",
		Short: "sampled - log the system time to syslog every second",
		Long: `sampled detaches from the terminal, becomes a session leader and logs the
current local time to syslog (facility daemon) once per second until it
receives SIGTERM. SIGHUP is accepted and ignored.

Exit status: 0 ok, 3 fork failed, 4 setsid failed, 5 chdir failed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Terminal logging for the CLI; the daemon replaces it with its
			// own channel.
			ch, err := logging.Open(logging.Options{Foreground: true, Verbose: f.verbose})
			if err != nil {
				return err
			}
			ch.SetDefault()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runDaemon(cmd.Context(), cfg, os.Args[0])
		},
	}
	rootCmd.PersistentFlags().StringVar(&f.configPath, "config-path", core.DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().CountVarP(&f.verbose, "verbose", "v", "more output, repeat for even more")
	rootCmd.Flags().BoolVarP(&f.foreground, "foreground", "f", false, "stay attached and log to stderr")

	rootCmd.AddCommand(
		NewVersionCommand(),
		NewStatusCommand(),
		NewStopCommand(),
	)

	return rootCmd
}

// loadConfig reads the config file and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command, f flags) (*core.Configuration, error) {
	cfg, err := core.LoadConfigOrDefault(f.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if cmd.Flags().Changed("foreground") {
		cfg.Foreground = f.foreground
	}
	return cfg, nil
}

// runDaemon opens the logging channel tagged with the program name and runs
// the daemon on it.
func runDaemon(ctx context.Context, cfg *core.Configuration, arg0 string) error {
	name := cfg.LogTag(arg0)

	channel, err := logging.Open(logging.Options{
		Tag:        name,
		Foreground: cfg.Foreground,
		Verbose:    cfg.Verbose,
	})
	if err != nil {
		return err
	}
	defer channel.Close()
	channel.SetDefault()

	d := daemon.New(daemon.Config{
		Name:       name,
		Channel:    channel,
		Foreground: cfg.Foreground,
		Detached:   daemon.Detached(),
	})
	return d.Run(ctx)
}
