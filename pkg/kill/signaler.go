//go:build linux

package kill

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Signaler sends a signal to a PID. sig == 0 is the conventional
// permission-check probe (see kill(2)): no signal is actually
// delivered, but the syscall still reports whether it could be.
type Signaler interface {
	Kill(pid int, sig syscall.Signal) error
}

// UnixSignaler sends real signals via golang.org/x/sys/unix.
type UnixSignaler struct{}

func (UnixSignaler) Kill(pid int, sig syscall.Signal) error {
	err := unix.Kill(pid, sig)
	switch err {
	case nil:
		return nil
	case unix.ESRCH:
		// Victim already gone: spec treats this as success, not failure.
		return nil
	case unix.EPERM:
		return ErrPermission
	default:
		return err
	}
}
