package control

import "github.com/oomwatch/oomwatchd/pkg/victim"

// Thresholds is the immutable configuration bundle built once at
// startup from CLI flags and the optional config file.
type Thresholds struct {
	MemHighPct  float64
	MemTermPct  float64
	MemKillPct  float64
	MemEmergPct float64

	SwapTermPct float64
	SwapKillPct float64

	EmergencyNames []string

	IgnoreOOMScoreAdj bool
	Notify            bool
	Dryrun            bool

	ReportIntervalMs int64

	Regexes victim.RegexSet
}
