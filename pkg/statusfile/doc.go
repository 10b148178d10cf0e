// Package statusfile writes the four-line status snapshot the daemon
// rewrites every control-loop iteration, and the reader oomwatchctl
// uses to print it.
package statusfile
