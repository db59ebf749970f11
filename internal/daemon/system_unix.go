//go:build unix

package daemon

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// System is the set of process-level calls the daemonization sequence makes.
type System interface {
	Getpid() int
	Getsid(pid int) (int, error)
	Setsid() (int, error)
	Umask(mask int) int
	Chdir(dir string) error
	CloseStdio() error
}

// OS is the System backed by the running process.
type OS struct{}

func (OS) Getpid() int                 { return unix.Getpid() }
func (OS) Getsid(pid int) (int, error) { return unix.Getsid(pid) }
func (OS) Setsid() (int, error)        { return unix.Setsid() }
func (OS) Umask(mask int) int          { return unix.Umask(mask) }
func (OS) Chdir(dir string) error      { return unix.Chdir(dir) }

// CloseStdio closes descriptors 0, 1 and 2.
func (OS) CloseStdio() error {
	return errors.Join(os.Stdin.Close(), os.Stdout.Close(), os.Stderr.Close())
}
