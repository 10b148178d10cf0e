package control

const (
	minSleepMs = 100
	maxSleepMs = 1000

	// Worst-observed fill rates; must not be tuned down silently.
	memFillRateKiBPerMs  = 6000
	swapFillRateKiBPerMs = 800
)

// AdaptiveSleepMs computes the idle-path sleep duration from how much
// headroom remains above the term thresholds: the more slack, the
// longer the daemon can safely sleep before it must look again.
func AdaptiveSleepMs(mem MemPct, th Thresholds) int64 {
	headroomMemKiB := clampNonNegative(mem.MemAvailablePct-th.MemTermPct) * 10 * float64(mem.MemTotalMiB)
	headroomSwapKiB := clampNonNegative(mem.SwapFreePct-th.SwapTermPct) * 10 * float64(mem.SwapTotalMiB)

	sleepMs := headroomMemKiB/memFillRateKiBPerMs + headroomSwapKiB/swapFillRateKiBPerMs

	ms := int64(sleepMs)
	if ms < minSleepMs {
		return minSleepMs
	}
	if ms > maxSleepMs {
		return maxSleepMs
	}
	return ms
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
