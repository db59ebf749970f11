package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// Instance is a running detached copy of an executable.
type Instance struct {
	PID     int32
	Started time.Time
	Cmdline string
}

// FindInstances lists session-leading processes other than this one whose
// executable resolves to exe.
func FindInstances(ctx context.Context, exe string) ([]Instance, error) {
	want, err := filepath.EvalSymlinks(exe)
	if err != nil {
		want = exe
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	self := int32(os.Getpid())
	var found []Instance
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		if !matchesExecutable(ctx, p, want) {
			continue
		}
		// Only the detached child leads its own session.
		if sid, err := unix.Getsid(int(p.Pid)); err != nil || sid != int(p.Pid) {
			continue
		}

		inst := Instance{PID: p.Pid}
		if ms, err := p.CreateTimeWithContext(ctx); err == nil {
			inst.Started = time.UnixMilli(ms)
		}
		if cmdline, err := p.CmdlineWithContext(ctx); err == nil {
			inst.Cmdline = cmdline
		}
		found = append(found, inst)
	}
	return found, nil
}

func matchesExecutable(ctx context.Context, p *process.Process, want string) bool {
	got, err := p.ExeWithContext(ctx)
	if err != nil || got == "" {
		return false
	}
	if got == want {
		return true
	}
	resolved, err := filepath.EvalSymlinks(got)
	return err == nil && resolved == want
}

// StopInstance sends SIGTERM to inst and polls until it has exited or
// timeout elapses.
func StopInstance(ctx context.Context, inst Instance, timeout, pollInterval time.Duration) error {
	p, err := process.NewProcessWithContext(ctx, inst.PID)
	if err != nil {
		return fmt.Errorf("process %d not found: %w", inst.PID, err)
	}
	if err := p.SendSignalWithContext(ctx, unix.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM to %d: %w", inst.PID, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		running, err := p.IsRunningWithContext(ctx)
		if err != nil || !running {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return fmt.Errorf("process %d did not exit within %v", inst.PID, timeout)
}
