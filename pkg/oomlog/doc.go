// Package oomlog builds the daemon's structured zap logger. Debug
// logging is the only level switch the command line exposes: at info
// level, transient per-PID errors are swallowed per the error
// taxonomy; at debug level they are logged.
package oomlog
