package control

import "syscall"

// Status is the one-word classification written to the status file
// and used in log lines.
type Status string

const (
	StatusOK        Status = "ok"
	StatusTerm      Status = "term"
	StatusKill      Status = "kill"
	StatusEmergency Status = "emergency"
	StatusHigh      Status = "high"
)

// ControlState is the only state carried forward between iterations.
// No per-PID state survives an iteration boundary: PIDs may be
// reused.
type ControlState struct {
	HysteresisSig       syscall.Signal
	EmergencyCooldownMs int64
	EmergencyInvoked    bool
	ReportCountdownMs   int64
	CurrentSetpoint     float64
}

// Decision is the outcome of evaluating one MemorySnapshot against
// Thresholds and the current ControlState.
type Decision struct {
	Status    Status
	Signal    syscall.Signal
	Emergency bool
	Setpoint  float64
}

// Decide implements the priority-ordered rule set from the control
// loop's per-iteration decision step: Emergency, Kill, Term,
// Hysteresis, then none. It is pure: no I/O, no clock reads, so the
// six end-to-end scenarios can be asserted directly against it.
func Decide(mem MemPct, th Thresholds, st ControlState) Decision {
	if len(th.EmergencyNames) > 0 && st.EmergencyCooldownMs <= 0 &&
		mem.MemAvailablePct <= th.MemEmergPct && mem.SwapFreePct <= th.SwapKillPct {
		return Decision{Status: StatusEmergency, Signal: syscall.SIGKILL, Emergency: true, Setpoint: th.MemEmergPct}
	}

	if mem.MemAvailablePct <= th.MemKillPct && mem.SwapFreePct <= th.SwapKillPct {
		return Decision{Status: StatusKill, Signal: syscall.SIGKILL, Setpoint: th.MemKillPct}
	}

	if mem.MemAvailablePct <= th.MemTermPct && mem.SwapFreePct <= th.SwapTermPct {
		return Decision{Status: StatusTerm, Signal: syscall.SIGTERM, Setpoint: th.MemTermPct}
	}

	if st.HysteresisSig != 0 && mem.MemAvailablePct <= th.MemHighPct {
		return Decision{Status: StatusHigh, Signal: st.HysteresisSig, Setpoint: th.MemHighPct}
	}

	return Decision{Status: StatusOK, Signal: 0}
}

// MemPct is the subset of a MemorySnapshot the decision function
// needs, so control does not import meminfo directly for its pure
// core.
type MemPct struct {
	MemAvailablePct float64
	SwapFreePct     float64
	MemTotalMiB     uint64
	SwapTotalMiB    uint64
}
