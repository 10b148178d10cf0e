// Package procfs reads per-process and system-wide state from a
// /proc-shaped filesystem.
//
// Every accessor takes a PID and returns either a value or an error.
// The expected failures map to the sentinel errors in errs.go:
// ErrNotFound (the process exited between directory listing and read),
// ErrPermission, or ErrParse; any other I/O error is returned as the os
// package reported it. Callers that scan many PIDs (see pkg/victim)
// are expected to drop a candidate silently on any error rather than
// treat it as fatal — process tables are inherently racy.
//
// Reader's root directory defaults to "/proc" but can be overridden,
// the same way the teacher package overrode CLK_TCK/PAGE_SIZE via
// environment variables for testing; here it is a constructor argument
// since tests build whole synthetic trees rather than single values.
package procfs
