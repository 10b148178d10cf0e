package kill

import "errors"

var (
	// ErrTimeout is returned when a victim is still alive after the full
	// 10-second escalation window.
	ErrTimeout = errors.New("kill: victim did not exit before timeout")

	// ErrPermission wraps a signalling syscall failure caused by
	// insufficient privileges.
	ErrPermission = errors.New("kill: permission denied")
)
