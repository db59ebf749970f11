//go:build unix

package daemon

import "syscall"

// detachAttr returns the attributes of the re-executed child: a new session
// with no controlling terminal.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setsid: true,
	}
}
