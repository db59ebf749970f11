package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

const (
	helperEnv    = "SAMPLED_TEST_HELPER"
	helperOutEnv = "SAMPLED_TEST_OUT"
)

func TestMain(m *testing.M) {
	if os.Getenv(helperEnv) == "detach" {
		os.Exit(runDetachHelper())
	}
	os.Exit(m.Run())
}

// runDetachHelper plays both roles of a real start: under a terminal it
// launches the child, and as the child it reports its session and whether
// it still has a controlling terminal.
func runDetachHelper() int {
	if !Detached() {
		if _, err := (&Launcher{}).Start(); err != nil {
			return int(ExitFork)
		}
		return int(ExitOK)
	}

	sid, _ := unix.Getsid(0)
	hasTTY := true
	if f, err := os.Open("/dev/tty"); err != nil {
		hasTTY = false
	} else {
		f.Close()
	}
	report := fmt.Sprintf("pid=%d sid=%d tty=%v\n", unix.Getpid(), sid, hasTTY)
	if err := os.WriteFile(os.Getenv(helperOutEnv), []byte(report), 0o644); err != nil {
		return 1
	}
	return int(ExitOK)
}

func TestLauncher_ChildHasNoControllingTerminal(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report")

	cmd := exec.Command(os.Args[0], "-test.run=^$")
	cmd.Env = append(os.Environ(), helperEnv+"=detach", helperOutEnv+"="+out)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	defer ptmx.Close()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			t.Fatalf("launcher exited with %d", exitErr.ExitCode())
		}
		t.Fatalf("launcher failed: %v", err)
	}

	report := waitForFile(t, out, 10*time.Second)

	var pid, sid int
	var tty bool
	if _, err := fmt.Sscanf(strings.TrimSpace(report), "pid=%d sid=%d tty=%t", &pid, &sid, &tty); err != nil {
		t.Fatalf("unparseable report %q: %v", report, err)
	}
	if pid != sid {
		t.Errorf("child should lead its own session: pid %d sid %d", pid, sid)
	}
	if tty {
		t.Error("child still has a controlling terminal")
	}
	if pid == cmd.Process.Pid {
		t.Error("the launcher and the background process must differ")
	}
}
