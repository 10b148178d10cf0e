package control

import (
	"syscall"
	"time"

	"github.com/oomwatch/oomwatchd/pkg/kill"
	"github.com/oomwatch/oomwatchd/pkg/meminfo"
	"github.com/oomwatch/oomwatchd/pkg/victim"
)

const emergencyCooldownMs = 30000

// StatusWriter persists the four-line status snapshot every
// iteration. Satisfied by *statusfile.Writer.
type StatusWriter interface {
	Write(status string, memAvailablePct, setpoint float64, at time.Time) error
}

// Reporter emits the periodic free-text memory report when
// report_interval_ms elapses with no kill action taken.
type Reporter interface {
	Report(snap meminfo.Snapshot)
}

// Notifier is told about a completed kill so it can fire a
// best-effort desktop notification after the fact.
type Notifier interface {
	NotifyKilled(pid int, name string, sig syscall.Signal)
}

// MetricsSink observes one iteration's outcome for an external metrics
// surface. Satisfied by metrics.Sink, which forwards to the
// package-level functions in pkg/metrics; kept as an interface here so control has no direct dependency on
// any particular metrics library.
type MetricsSink interface {
	ObserveIteration(memPct, swapPct float64, sleepMs int64, candidates int)
	ObserveKill(signalName string)
	ObserveEmergency()
	ObserveEmergencyCooldown(remainingMs int64)
}

// Logger receives the loop's debug and warning diagnostics. Satisfied
// by *zap.SugaredLogger; nil is valid and silences it entirely.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
}

func warnw(l Logger, msg string, kv ...interface{}) {
	if l != nil {
		l.Warnw(msg, kv...)
	}
}

// noVictimSleepMs is the "log, sleep one second, continue" fallback
// mandated for any iteration where a signal was warranted but the
// scan produced no eligible victim (hidepid, every process pinned
// with oom_score_adj=-1000, a transient /proc read failure on every
// candidate, and so on).
const noVictimSleepMs = 1000

// Loop wires C1 (meminfo), C3 (victim selection), C4 (escalator), and
// C5 (emergency) together under the priority-ordered decision rules
// in Decide.
type Loop struct {
	Mem        interface{ Read() (meminfo.Snapshot, error) }
	Selector   *victim.Options
	ProcSource victim.ProcSource
	Names      kill.NameSource
	Escalator  *kill.Escalator
	Emergency  *kill.Emergency
	Status     StatusWriter
	Report     Reporter
	Notify     Notifier
	Metrics    MetricsSink
	Logger     Logger
	Clock      kill.Clock
	Thresholds Thresholds
}

// SelfTest runs C3+C4 once with signal 0, the zero-wait permission
// probe, so fatal misconfiguration surfaces before the loop starts
// and before the page cache is touched under memory pressure.
func (l *Loop) SelfTest() error {
	res, err := victim.Select(l.ProcSource, *l.Selector)
	if err != nil {
		return err
	}
	if res.Victim == nil {
		return nil
	}
	_, err = l.Escalator.Kill(res.Victim.PID, 0, l.Thresholds.Dryrun)
	return err
}

// Step runs exactly one control-loop iteration and returns the
// updated state and how long to sleep before the next one.
func (l *Loop) Step(st ControlState) (ControlState, int64, error) {
	snap, err := l.Mem.Read()
	if err != nil {
		return st, 1000, err
	}

	memPct := MemPct{
		MemAvailablePct: snap.MemAvailablePct,
		SwapFreePct:     snap.SwapFreePct,
		MemTotalMiB:     snap.MemTotalMiB,
		SwapTotalMiB:    snap.SwapTotalMiB,
	}

	d := Decide(memPct, l.Thresholds, st)

	if l.Status != nil {
		now := clockNow(l.Clock)
		_ = l.Status.Write(string(d.Status), snap.MemAvailablePct, d.Setpoint, now)
	}
	st.CurrentSetpoint = d.Setpoint

	if d.Signal != 0 {
		var (
			sleepMs    int64
			candidates int
		)
		if d.Emergency {
			killed, _ := l.Emergency.Run(l.Thresholds.EmergencyNames)
			_ = killed
			st.EmergencyInvoked = true
			st.EmergencyCooldownMs = emergencyCooldownMs
			sleepMs = 2000
			if l.Metrics != nil {
				l.Metrics.ObserveEmergency()
			}
		} else {
			res, selErr := victim.Select(l.ProcSource, *l.Selector)
			if selErr == nil {
				candidates = res.Reads.CandidatesSeen
			}
			if selErr == nil && res.Victim != nil {
				out, killErr := l.Escalator.Kill(res.Victim.PID, d.Signal, l.Thresholds.Dryrun)
				if killErr == nil && l.Notify != nil && l.Thresholds.Notify {
					l.Notify.NotifyKilled(res.Victim.PID, res.Victim.Name, out.FinalSignal)
				}
				if killErr == nil && l.Metrics != nil {
					l.Metrics.ObserveKill(out.FinalSignal.String())
				}
				if out.Escalated {
					sleepMs = 50
				} else {
					sleepMs = 500
				}
			} else {
				if selErr != nil {
					warnw(l.Logger, "no victim: scan failed", "err", selErr)
				} else if res.SawOnly {
					warnw(l.Logger, "no victim: hidepid hides all processes but our own")
				} else {
					warnw(l.Logger, "no victim: no candidate survived the skip rules")
				}
				sleepMs = noVictimSleepMs
			}
		}
		st.HysteresisSig = d.Signal
		if l.Metrics != nil {
			l.Metrics.ObserveIteration(snap.MemAvailablePct, snap.SwapFreePct, sleepMs, candidates)
			l.Metrics.ObserveEmergencyCooldown(st.EmergencyCooldownMs)
		}
		return st, sleepMs, nil
	}

	st.HysteresisSig = 0

	sleepMs := AdaptiveSleepMs(memPct, l.Thresholds)
	if l.Thresholds.ReportIntervalMs > 0 && st.ReportCountdownMs <= 0 {
		if l.Report != nil {
			l.Report.Report(snap)
		}
		st.ReportCountdownMs = l.Thresholds.ReportIntervalMs
	}

	if l.Metrics != nil {
		l.Metrics.ObserveIteration(snap.MemAvailablePct, snap.SwapFreePct, sleepMs, 0)
		l.Metrics.ObserveEmergencyCooldown(st.EmergencyCooldownMs)
	}

	return st, sleepMs, nil
}

// Run executes Step forever, decrementing both countdowns by the
// slept duration after every successful Step. It never returns: when
// Mem.Read fails, Run sleeps one second, leaves the countdowns as they
// are, and tries again.
func (l *Loop) Run() error {
	clock := l.Clock
	if clock == nil {
		clock = kill.RealClock{}
	}

	st := ControlState{}
	for {
		next, sleepMs, err := l.Step(st)
		st = next
		if err != nil {
			clock.Sleep(time.Second)
			continue
		}

		clock.Sleep(time.Duration(sleepMs) * time.Millisecond)
		st.EmergencyCooldownMs -= sleepMs
		st.ReportCountdownMs -= sleepMs
	}
}

func clockNow(c kill.Clock) time.Time {
	if c == nil {
		return time.Now()
	}
	return c.Now()
}
