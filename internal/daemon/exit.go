package daemon

import (
	"errors"
	"fmt"
)

// ExitCode is the process exit status reported for each way sampled can end.
type ExitCode int

const (
	ExitOK     ExitCode = 0
	ExitUsage  ExitCode = 1 // bad flags, unreadable config, syslog unreachable
	ExitFork   ExitCode = 3
	ExitSetsid ExitCode = 4
	ExitChdir  ExitCode = 5
	ExitWTF    ExitCode = 187 // the logging loop returned without being cancelled
)

// Daemonization steps, used as the step attribute of diagnostics.
const (
	StepFork   = "fork"
	StepSetsid = "setsid"
	StepChdir  = "chdir"
	StepLoop   = "loop"
)

// StepError is a fatal failure of one daemonization step.
type StepError struct {
	Step string
	Code ExitCode
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ExitCodeOf maps an error returned by the CLI to a process exit status.
func ExitCodeOf(err error) int {
	if err == nil {
		return int(ExitOK)
	}
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return int(stepErr.Code)
	}
	return int(ExitUsage)
}
