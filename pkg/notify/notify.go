package notify

import (
	"fmt"
	"os/exec"
	"syscall"
)

// Notifier spawns notify-send (or an injected equivalent) to raise a
// desktop notification. Notifications fire only after a kill attempt,
// never before, so the host has the memory headroom to spawn them.
type Notifier struct {
	// Command defaults to "notify-send" when empty.
	Command string
}

// NotifyKilled fires a best-effort notification describing a
// completed kill. Spawn failures are not reported to the caller: the
// contract is fire-and-forget.
func (n Notifier) NotifyKilled(pid int, name string, sig syscall.Signal) {
	cmd := n.Command
	if cmd == "" {
		cmd = "notify-send"
	}

	summary := "oomwatchd killed process"
	body := fmt.Sprintf("%s (pid %d) with signal %s", name, pid, sig)

	c := exec.Command(cmd, summary, body)
	_ = c.Start()
	// The child is reaped by the process-wide SIGCHLD handler
	// (see Reaper), not by waiting on it here.
}
