// Package meminfo parses the kernel's /proc/meminfo summary into an
// immutable Snapshot used by the control loop to compare
// against configured thresholds.
package meminfo
