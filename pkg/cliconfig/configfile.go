package cliconfig

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FileConfig holds every recognized key from the config file. A nil
// pointer field means the key was absent; present pointer fields win
// over the corresponding CLI flag during merge.
type FileConfig struct {
	ReportIntervalSec *int
	Nice              *bool
	IgnoreOOMScoreAdj *bool
	NotifyDBus        *bool
	MemoryHigh        *float64
	MemoryLow         *float64
	MemoryKill        *float64
	MemoryEmerg       *float64
	SwapLow           *float64
	SwapKill          *float64
	PreferRegex       *string
	AvoidRegex        *string
	AvoidUsers        *string
	PreferOld         *string
	EmergKill         []string

	Warnings []string
}

// ParseConfigFile reads a line-oriented key=value file. Lines
// starting with # or ; (after leading whitespace) are comments; blank
// lines are ignored. Unrecognized keys produce a warning, not a
// failure.
func ParseConfigFile(path string) (FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileConfig{}, err
	}
	defer f.Close()

	var cfg FileConfig
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if err := applyKey(&cfg, key, value); err != nil {
			return FileConfig{}, fmt.Errorf("config: key %q: %w", key, err)
		}
	}
	if err := sc.Err(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

func applyKey(cfg *FileConfig, key, value string) error {
	switch key {
	case "report_interval":
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.ReportIntervalSec = &v
	case "nice":
		v, err := parseBool(value)
		if err != nil {
			return err
		}
		cfg.Nice = &v
	case "ignore_oom_score_adj":
		v, err := parseBool(value)
		if err != nil {
			return err
		}
		cfg.IgnoreOOMScoreAdj = &v
	case "notify_dbus":
		v, err := parseBool(value)
		if err != nil {
			return err
		}
		cfg.NotifyDBus = &v
	case "memory_high":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		cfg.MemoryHigh = &v
	case "memory_low":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		cfg.MemoryLow = &v
	case "memory_kill":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		cfg.MemoryKill = &v
	case "memory_emerg":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		cfg.MemoryEmerg = &v
	case "swap_low":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		cfg.SwapLow = &v
	case "swap_kill":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		cfg.SwapKill = &v
	case "prefer_regex":
		cfg.PreferRegex = &value
	case "avoid_regex":
		cfg.AvoidRegex = &value
	case "avoid_users":
		cfg.AvoidUsers = &value
	case "prefer_old":
		cfg.PreferOld = &value
	case "emerg_kill":
		names := splitNames(value)
		if len(names) > 64 {
			return fmt.Errorf("emerg_kill: too many names (%d, max 64)", len(names))
		}
		for _, n := range names {
			if len(n) > 32 {
				return fmt.Errorf("emerg_kill: name %q exceeds 32 bytes", n)
			}
		}
		cfg.EmergKill = names
	default:
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("config: unrecognized key %q ignored", key))
	}
	return nil
}

func splitNames(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", value)
	}
}
