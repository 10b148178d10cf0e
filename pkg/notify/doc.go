// Package notify spawns a short-lived desktop-notification helper
// after a kill attempt. It is fire-and-forget: the core never
// observes whether the notifier succeeded, and a SIGCHLD reaper keeps
// the resulting zombies from accumulating.
package notify
