package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	memAvailablePct = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oomwatchd",
		Name:      "mem_available_pct",
		Help:      "current MemAvailable as a percentage of MemTotal",
	})
	swapFreePct = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oomwatchd",
		Name:      "swap_free_pct",
		Help:      "current SwapFree as a percentage of SwapTotal",
	})
	sleepMs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oomwatchd",
		Name:      "loop_sleep_ms",
		Help:      "sleep duration chosen by the last control loop iteration",
	})
	killsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oomwatchd",
		Name:      "kills_total",
		Help:      "number of kill attempts, partitioned by signal",
	}, []string{"signal"})
	emergenciesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oomwatchd",
		Name:      "emergencies_total",
		Help:      "number of emergency sweeps performed",
	})
	scanCandidates = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oomwatchd",
		Name:      "scan_candidates",
		Help:      "number of processes examined by the last victim scan",
	})
	emergencyCooldownMsRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oomwatchd",
		Name:      "emergency_cooldown_ms_remaining",
		Help:      "milliseconds remaining before another emergency sweep may fire",
	})
)

// Register attaches every collector to reg. Call once at startup.
func Register(reg *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{
		memAvailablePct, swapFreePct, sleepMs, killsTotal, emergenciesTotal, scanCandidates,
		emergencyCooldownMsRemaining,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveIteration records the values produced by one control loop
// pass.
func ObserveIteration(memPct, swapPct float64, sleepDurationMs int64, candidates int) {
	memAvailablePct.Set(memPct)
	swapFreePct.Set(swapPct)
	sleepMs.Set(float64(sleepDurationMs))
	scanCandidates.Set(float64(candidates))
}

// ObserveKill increments the per-signal kill counter.
func ObserveKill(signalName string) {
	killsTotal.WithLabelValues(signalName).Inc()
}

// ObserveEmergency increments the emergency counter.
func ObserveEmergency() {
	emergenciesTotal.Inc()
}

// ObserveEmergencyCooldown records the cooldown remaining at the end of
// an iteration, before that iteration's sleep is subtracted, clamped to
// zero so a negative countdown never
// shows as a negative gauge value.
func ObserveEmergencyCooldown(remainingMs int64) {
	if remainingMs < 0 {
		remainingMs = 0
	}
	emergencyCooldownMsRemaining.Set(float64(remainingMs))
}

// Sink adapts the package-level Observe* functions to
// control.MetricsSink, so the control loop can report into whichever
// registry Register attached the collectors to, without importing this
// package's concrete collectors directly.
type Sink struct{}

func (Sink) ObserveIteration(memPct, swapPct float64, sleepMs int64, candidates int) {
	ObserveIteration(memPct, swapPct, sleepMs, candidates)
}

func (Sink) ObserveKill(signalName string) { ObserveKill(signalName) }

func (Sink) ObserveEmergency() { ObserveEmergency() }

func (Sink) ObserveEmergencyCooldown(remainingMs int64) { ObserveEmergencyCooldown(remainingMs) }
