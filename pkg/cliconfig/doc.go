// Package cliconfig owns the daemon's external configuration surface:
// Cobra flag registration, the line-oriented config file format, and
// the merge rules that turn both into the immutable bundle the
// control loop runs with.
package cliconfig
