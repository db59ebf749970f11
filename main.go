package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.olrik.dev/sampled/cmd"
	"go.olrik.dev/sampled/internal/daemon"
)

func main() {
	root := cmd.NewRootCommand()
	err := root.ExecuteContext(context.Background())
	if err != nil {
		var stepErr *daemon.StepError
		if !errors.As(err, &stepErr) {
			// Step failures are already in the log.
			fmt.Fprintln(os.Stderr, err)
		}
	}
	os.Exit(daemon.ExitCodeOf(err))
}
