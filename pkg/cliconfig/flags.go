package cliconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oomwatch/oomwatchd/pkg/statusfile"
	"github.com/spf13/cobra"
)

// CLI holds every flag value as entered on the command line, before
// merging with a config file.
type CLI struct {
	MemArg  string // -m P[,K]
	SwapArg string // -s P[,K]
	MemAbs  string // -M KiB[,KiB]
	SwapAbs string // -S KiB[,KiB]

	IgnoreOOMScoreAdj bool // -i
	Notify            bool // -n
	NotifyCompat      string
	Debug             bool // -d
	Version           bool // -v
	ReportIntervalSec int  // -r
	RaisePriority     bool // -p
	ConfigPath        string
	PreferRegex       string
	AvoidRegex        string
	Dryrun            bool
	SelfTest          bool
	MetricsAddr       string
	LogJSON           bool
	StatusFilePath    string
}

// Register attaches every flag in spec.md's CLI surface to cmd.
func Register(cmd *cobra.Command, c *CLI) {
	f := cmd.Flags()
	f.StringVarP(&c.MemArg, "mem", "m", "10", "RAM term%[,kill%]; kill defaults to term/2")
	f.StringVarP(&c.SwapArg, "swap", "s", "10", "swap term%[,kill%]")
	f.StringVarP(&c.MemAbs, "mem-abs", "M", "", "RAM term KiB[,kill KiB] (overrides -m if lower)")
	f.StringVarP(&c.SwapAbs, "swap-abs", "S", "", "swap term KiB[,kill KiB] (overrides -s if lower)")
	f.BoolVarP(&c.IgnoreOOMScoreAdj, "ignore-oom-score-adj", "i", false, "ignore positive oom_score_adj")
	f.BoolVarP(&c.Notify, "notify", "n", false, "enable desktop notifications")
	f.StringVarP(&c.NotifyCompat, "notify-compat", "N", "", "accepted and ignored, for earlyoom compatibility")
	f.BoolVarP(&c.Debug, "debug", "d", false, "debug logging")
	f.BoolVarP(&c.Version, "version", "v", false, "print version and exit")
	f.IntVarP(&c.ReportIntervalSec, "report-interval", "r", 0, "periodic report interval in seconds (0 disables); oomwatchd installs no reporter, so no report is printed")
	f.BoolVarP(&c.RaisePriority, "raise-priority", "p", false, "raise scheduling priority and set our own oom_score_adj to -100")
	f.StringVarP(&c.ConfigPath, "config", "c", "", "path to config file")
	f.StringVar(&c.PreferRegex, "prefer", "", "regex of process names to prefer as victims")
	f.StringVar(&c.AvoidRegex, "avoid", "", "regex of process names to avoid killing")
	f.BoolVar(&c.Dryrun, "dryrun", false, "log intended actions without sending real signals")
	f.BoolVar(&c.SelfTest, "self-test", false, "run the startup self-test and exit")
	f.StringVar(&c.MetricsAddr, "metrics-addr", "", "address to serve Prometheus /metrics on (empty disables)")
	f.BoolVar(&c.LogJSON, "log-json", false, "emit JSON-encoded logs instead of console-encoded")
	f.StringVar(&c.StatusFilePath, "status-file", statusfile.DefaultOomwatchdPath, "path to write the status file to")
}

// PctPair is a parsed "P[,K]" argument: a required primary percentage
// and an optional secondary, defaulting to primary/2 when absent.
type PctPair struct {
	Primary   float64
	Secondary float64
}

// ParsePctPair parses "-m"/"-s" style arguments.
func ParsePctPair(arg string, upperBound float64) (PctPair, error) {
	primary, secondary, err := splitPair(arg)
	if err != nil {
		return PctPair{}, err
	}
	p, err := strconv.ParseFloat(primary, 64)
	if err != nil {
		return PctPair{}, fmt.Errorf("invalid percentage %q: %w", primary, err)
	}
	if p < 0 || p > upperBound {
		return PctPair{}, fmt.Errorf("percentage %v out of range [0, %v]", p, upperBound)
	}

	k := p / 2
	if secondary != "" {
		k, err = strconv.ParseFloat(secondary, 64)
		if err != nil {
			return PctPair{}, fmt.Errorf("invalid percentage %q: %w", secondary, err)
		}
	}
	if k < 0 || k > p {
		return PctPair{}, fmt.Errorf("secondary percentage %v out of range [0, %v]", k, p)
	}

	return PctPair{Primary: p, Secondary: k}, nil
}

// AbsPair is a parsed "-M"/"-S" KiB[,KiB] argument.
type AbsPair struct {
	Primary   uint64
	Secondary uint64
	Set       bool
}

// ParseAbsPair parses "-M"/"-S" style arguments. An empty arg yields a
// zero-value, unset AbsPair.
func ParseAbsPair(arg string) (AbsPair, error) {
	if arg == "" {
		return AbsPair{}, nil
	}
	primary, secondary, err := splitPair(arg)
	if err != nil {
		return AbsPair{}, err
	}
	p, err := strconv.ParseUint(primary, 10, 64)
	if err != nil {
		return AbsPair{}, fmt.Errorf("invalid KiB value %q: %w", primary, err)
	}
	k := p / 2
	if secondary != "" {
		k, err = strconv.ParseUint(secondary, 10, 64)
		if err != nil {
			return AbsPair{}, fmt.Errorf("invalid KiB value %q: %w", secondary, err)
		}
	}
	return AbsPair{Primary: p, Secondary: k, Set: true}, nil
}

func splitPair(arg string) (primary, secondary string, err error) {
	parts := strings.SplitN(arg, ",", 2)
	if len(parts) == 0 || parts[0] == "" {
		return "", "", fmt.Errorf("empty argument")
	}
	if len(parts) == 2 {
		return parts[0], parts[1], nil
	}
	return parts[0], "", nil
}
