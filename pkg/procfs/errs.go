package procfs

import "errors"

var (
	// ErrNotFound indicates the PID directory disappeared mid-read.
	ErrNotFound = errors.New("procfs: process not found")

	// ErrPermission indicates a per-PID file could not be opened due to
	// insufficient privileges.
	ErrPermission = errors.New("procfs: permission denied")

	// ErrParse indicates a kernel-exposed file had an unexpected shape.
	ErrParse = errors.New("procfs: malformed field")
)
