package cliconfig

import (
	"github.com/oomwatch/oomwatchd/pkg/control"
	"github.com/oomwatch/oomwatchd/pkg/victim"
)

// Merged is everything the daemon needs to build its control.Loop,
// produced once at startup from CLI flags, an optional config file,
// and the system's total memory/swap (needed to turn -M/-S absolute
// KiB arguments into percentages).
type Merged struct {
	Thresholds     control.Thresholds
	Debug          bool
	Notify         bool
	RaisePrio      bool
	SelfTest       bool
	MetricsAddr    string
	LogJSON        bool
	StatusFilePath string
	Warnings       []string
}

// Merge combines CLI flags and an optional config file into the
// immutable threshold bundle. Config values win over CLI when both
// are present. When both a percentage (-m/-s) and an absolute
// (-M/-S) form are given, the minimum of the two resulting
// percentages is used.
func Merge(cli CLI, file FileConfig, memTotalKiB, swapTotalKiB uint64) (Merged, error) {
	memPct, err := ParsePctPair(cli.MemArg, 99)
	if err != nil {
		return Merged{}, &ExitError{Code: ExitBadNumericPercent, Err: err}
	}
	swapPct, err := ParsePctPair(cli.SwapArg, 100)
	if err != nil {
		return Merged{}, &ExitError{Code: ExitBadNumericPercent, Err: err}
	}
	memAbs, err := ParseAbsPair(cli.MemAbs)
	if err != nil {
		return Merged{}, &ExitError{Code: ExitBadNumericAbsolute, Err: err}
	}
	swapAbs, err := ParseAbsPair(cli.SwapAbs)
	if err != nil {
		return Merged{}, &ExitError{Code: ExitBadNumericAbsolute, Err: err}
	}

	memTermPct := memPct.Primary
	memKillPct := memPct.Secondary
	if memAbs.Set && memTotalKiB > 0 {
		termFromAbs := 100 * float64(memAbs.Primary) / float64(memTotalKiB)
		killFromAbs := 100 * float64(memAbs.Secondary) / float64(memTotalKiB)
		memTermPct = minFloat(memTermPct, termFromAbs)
		memKillPct = minFloat(memKillPct, killFromAbs)
	}

	swapTermPct := swapPct.Primary
	swapKillPct := swapPct.Secondary
	if swapAbs.Set && swapTotalKiB > 0 {
		termFromAbs := 100 * float64(swapAbs.Primary) / float64(swapTotalKiB)
		killFromAbs := 100 * float64(swapAbs.Secondary) / float64(swapTotalKiB)
		swapTermPct = minFloat(swapTermPct, termFromAbs)
		swapKillPct = minFloat(swapKillPct, killFromAbs)
	}

	// Config-file overrides for the CLI-derived percentages.
	if file.MemoryLow != nil {
		memTermPct = *file.MemoryLow
	}
	if file.MemoryKill != nil {
		memKillPct = *file.MemoryKill
	}
	if file.SwapLow != nil {
		swapTermPct = *file.SwapLow
	}
	if file.SwapKill != nil {
		swapKillPct = *file.SwapKill
	}

	memHighPct := minFloat(99, memTermPct*1.5)
	if file.MemoryHigh != nil {
		memHighPct = *file.MemoryHigh
	}

	memEmergPct := memKillPct / 2
	if file.MemoryEmerg != nil {
		memEmergPct = *file.MemoryEmerg
	}

	ignoreAdj := cli.IgnoreOOMScoreAdj
	if file.IgnoreOOMScoreAdj != nil {
		ignoreAdj = *file.IgnoreOOMScoreAdj
	}

	notify := cli.Notify
	if file.NotifyDBus != nil {
		notify = *file.NotifyDBus
	}

	raisePrio := cli.RaisePriority
	if file.Nice != nil {
		raisePrio = *file.Nice
	}

	reportIntervalSec := cli.ReportIntervalSec
	if file.ReportIntervalSec != nil {
		reportIntervalSec = *file.ReportIntervalSec
	}

	preferRegex := cli.PreferRegex
	if file.PreferRegex != nil {
		preferRegex = *file.PreferRegex
	}
	avoidRegex := cli.AvoidRegex
	if file.AvoidRegex != nil {
		avoidRegex = *file.AvoidRegex
	}
	avoidUsers := ""
	if file.AvoidUsers != nil {
		avoidUsers = *file.AvoidUsers
	}
	preferOld := ""
	if file.PreferOld != nil {
		preferOld = *file.PreferOld
	}

	regexes, err := victim.Compile(preferRegex, avoidRegex, avoidUsers, preferOld)
	if err != nil {
		return Merged{}, &ExitError{Code: ExitRegexCompileFailed, Err: err}
	}

	th := control.Thresholds{
		MemHighPct:        memHighPct,
		MemTermPct:        memTermPct,
		MemKillPct:        memKillPct,
		MemEmergPct:       memEmergPct,
		SwapTermPct:       swapTermPct,
		SwapKillPct:       swapKillPct,
		EmergencyNames:    file.EmergKill,
		IgnoreOOMScoreAdj: ignoreAdj,
		Notify:            notify,
		Dryrun:            cli.Dryrun,
		ReportIntervalMs:  int64(reportIntervalSec) * 1000,
		Regexes:           regexes,
	}

	return Merged{
		Thresholds:     th,
		Debug:          cli.Debug,
		Notify:         notify,
		RaisePrio:      raisePrio,
		SelfTest:       cli.SelfTest,
		MetricsAddr:    cli.MetricsAddr,
		LogJSON:        cli.LogJSON,
		StatusFilePath: cli.StatusFilePath,
		Warnings:       file.Warnings,
	}, nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
