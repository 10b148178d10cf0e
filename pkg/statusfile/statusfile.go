package statusfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultPath matches the historical earlyoom status file location,
// kept as the fallback for tooling that still points at it.
const DefaultPath = "/var/run/earlyoom/status"

// DefaultOomwatchdPath is oomwatchd's own default status file
// location, since this is a renamed project rather than a literal
// fork of the daemon it succeeds.
const DefaultOomwatchdPath = "/var/run/oomwatchd/status"

// Writer rewrites path from scratch every call: open, truncate,
// write, close. There is no locking — readers accept torn reads.
type Writer struct {
	path string
}

func New(path string) *Writer {
	return &Writer{path: path}
}

// Write produces the four-line status format:
//
//	<status>
//	<mem_avail_pct, two decimals>
//	<triggered_setpoint, two decimals>
//	<unix_epoch_seconds>
func (w *Writer) Write(status string, memAvailablePct, setpoint float64, at time.Time) error {
	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s\n%.2f\n%.2f\n%d\n", status, memAvailablePct, setpoint, at.Unix())
	return err
}

// Snapshot is the parsed form of a status file, used by oomwatchctl.
type Snapshot struct {
	Status          string
	MemAvailablePct float64
	Setpoint        float64
	At              time.Time
}

// ErrMalformed indicates the status file had fewer than four lines.
var ErrMalformed = errors.New("statusfile: malformed, expected 4 lines")

// Read parses a status file previously produced by Write.
func Read(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return Snapshot{}, err
	}
	if len(lines) < 4 {
		return Snapshot{}, ErrMalformed
	}

	memAvail, err := strconv.ParseFloat(lines[1], 64)
	if err != nil {
		return Snapshot{}, err
	}
	setpoint, err := strconv.ParseFloat(lines[2], 64)
	if err != nil {
		return Snapshot{}, err
	}
	epoch, err := strconv.ParseInt(lines[3], 10, 64)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Status:          lines[0],
		MemAvailablePct: memAvail,
		Setpoint:        setpoint,
		At:              time.Unix(epoch, 0),
	}, nil
}
