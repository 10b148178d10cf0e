package kill

import (
	"syscall"
	"time"

	"github.com/oomwatch/oomwatchd/pkg/meminfo"
)

const (
	tickInterval  = 100 * time.Millisecond
	maxTicks      = 100 // 10s total
	escalateAfter = 6 * time.Second
)

// AliveChecker reports whether a PID is still present. Satisfied by
// *procfs.Reader.
type AliveChecker interface {
	IsAlive(pid int) bool
}

// MemSource supplies a fresh memory snapshot, used to re-check the
// kill watermark mid-wait. Satisfied by *meminfo.Reader.
type MemSource interface {
	Read() (meminfo.Snapshot, error)
}

// Outcome describes how a Kill call ended.
type Outcome struct {
	Escalated    bool // true if SIGTERM was escalated to SIGKILL
	FinalSignal  syscall.Signal
	VictimExited bool
}

// Escalator implements the graceful-signal / wait / escalate protocol
// (spec §4.4): send a signal, poll every 100ms for up to 10s, and
// escalate SIGTERM to SIGKILL either after 6s or the instant memory
// pressure crosses the kill watermark.
type Escalator struct {
	Signaler    Signaler
	Alive       AliveChecker
	Mem         MemSource
	Clock       Clock
	MemKillPct  float64
	SwapKillPct float64
}

// Kill sends initialSignal to pid and, unless it is the 0 self-test
// probe, waits for it to exit. dryrun suppresses any signal number
// other than 0.
func (e *Escalator) Kill(pid int, initialSignal syscall.Signal, dryrun bool) (Outcome, error) {
	clock := e.Clock
	if clock == nil {
		clock = RealClock{}
	}

	if !dryrun || initialSignal == 0 {
		if err := e.Signaler.Kill(pid, initialSignal); err != nil {
			if err == ErrPermission {
				clock.Sleep(time.Second)
			}
			return Outcome{FinalSignal: initialSignal}, err
		}
	}

	if initialSignal == 0 {
		return Outcome{FinalSignal: 0, VictimExited: false}, nil
	}

	sentAt := clock.Now()
	current := initialSignal
	escalated := false

	for tick := 0; tick < maxTicks; tick++ {
		clock.Sleep(tickInterval)

		if !e.Alive.IsAlive(pid) {
			return Outcome{Escalated: escalated, FinalSignal: current, VictimExited: true}, nil
		}

		if current == syscall.SIGTERM && !escalated {
			elapsed := clock.Now().Sub(sentAt)
			killPressure := e.killWatermarkCrossed()
			if elapsed >= escalateAfter || killPressure {
				if !dryrun {
					if err := e.Signaler.Kill(pid, syscall.SIGKILL); err != nil {
						if err == ErrPermission {
							clock.Sleep(time.Second)
						}
						return Outcome{Escalated: true, FinalSignal: syscall.SIGKILL}, err
					}
				}
				current = syscall.SIGKILL
				escalated = true
			}
		}
	}

	return Outcome{Escalated: escalated, FinalSignal: current}, ErrTimeout
}

func (e *Escalator) killWatermarkCrossed() bool {
	if e.Mem == nil {
		return false
	}
	snap, err := e.Mem.Read()
	if err != nil {
		return false
	}
	return snap.MemAvailablePct <= e.MemKillPct && snap.SwapFreePct <= e.SwapKillPct
}
