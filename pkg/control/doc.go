// Package control implements the daemon's decision loop: it turns a
// memory snapshot and a bundle of configured thresholds into an
// action (none, SIGTERM, SIGKILL, or emergency sweep), and carries the
// hysteresis and emergency-cooldown state that must survive across
// iterations. The decision function itself is pure so the six
// scenarios it must satisfy are unit-testable without any real /proc
// or wall-clock dependency.
package control
