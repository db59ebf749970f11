package daemon

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"go.olrik.dev/sampled/internal/core"
)

const (
	// RootDir is the working directory of the detached process, so it never
	// pins another filesystem.
	RootDir = "/"

	// FileMask leaves new files rw-r--r--.
	FileMask = 0o133

	errorFormat = "An error occurred. The error is: %v"
)

// Detached reports whether this process was started by Launcher.Start.
func Detached() bool {
	return os.Getenv(core.DetachedEnv) == "1"
}

// Launcher re-executes the current binary as a detached child.
type Launcher struct {
	Executable string   // defaults to os.Executable()
	Args       []string // argv including argv[0], defaults to os.Args
	Env        []string // defaults to os.Environ()
}

// Start launches the child in a new session with stdio bound to the null
// device and returns its pid. The child is released, not waited for.
func (l *Launcher) Start() (int, error) {
	exe := l.Executable
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return 0, fmt.Errorf("failed to resolve executable: %w", err)
		}
	}
	args := l.Args
	if len(args) == 0 {
		args = os.Args
	}
	env := l.Env
	if env == nil {
		env = os.Environ()
	}

	cmd := &exec.Cmd{
		Path:        exe,
		Args:        args,
		Env:         append(env, core.DetachedEnv+"=1"),
		SysProcAttr: detachAttr(),
	}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start background process: %w", err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release background process: %w", err)
	}
	return pid, nil
}

// Daemonizer performs the one-time transition into a background service.
// Detach runs in the invoking process, Daemonize in the detached child.
type Daemonizer struct {
	Logger     *slog.Logger
	System     System
	Launcher   *Launcher
	Foreground bool // skip detaching, session and stdio steps
	Detached   bool // this process is the re-executed child
}

// Detach starts the background child. It reports launched=true in the
// invoking process, which should then exit with ExitOK, and false in the
// child or in foreground mode.
func (d *Daemonizer) Detach() (launched bool, err error) {
	if d.Foreground || d.Detached {
		return false, nil
	}

	pid, err := d.Launcher.Start()
	if err != nil {
		return false, d.fail(StepFork, ExitFork, err)
	}
	d.Logger.Debug("Background process launched", "pid", pid)
	return true, nil
}

// Daemonize completes the transition in the child: session leadership,
// closed stdio, file mask and working directory, in that order.
func (d *Daemonizer) Daemonize() error {
	if !d.Foreground {
		if err := d.ensureSession(); err != nil {
			return d.fail(StepSetsid, ExitSetsid, err)
		}

		// Nothing can be reported through a closed descriptor, so a failed
		// close is only noted.
		if err := d.System.CloseStdio(); err != nil {
			d.Logger.Debug("Closing standard streams reported an error", "error", err)
		}
	}

	d.System.Umask(FileMask)

	if err := d.System.Chdir(RootDir); err != nil {
		return d.fail(StepChdir, ExitChdir, err)
	}
	return nil
}

// ensureSession makes the process a session leader. A child started by
// Launcher already is one; anything else gets a new session.
func (d *Daemonizer) ensureSession() error {
	pid := d.System.Getpid()
	sid, err := d.System.Getsid(0)
	if err == nil && sid == pid {
		d.Logger.Debug("Already session leader", "sid", sid)
		return nil
	}

	sid, err = d.System.Setsid()
	if err != nil {
		return err
	}
	d.Logger.Debug("Created new session", "sid", sid)
	return nil
}

func (d *Daemonizer) fail(step string, code ExitCode, err error) error {
	d.Logger.Error(fmt.Sprintf(errorFormat, err), "step", step, "exit_code", int(code))
	return &StepError{Step: step, Code: code, Err: err}
}
