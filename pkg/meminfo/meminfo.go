//go:build linux

package meminfo

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// Snapshot is an immutable value describing system memory pressure at
// one point in time.
type Snapshot struct {
	MemTotalKiB     uint64
	SwapTotalKiB    uint64
	MemAvailablePct float64
	SwapFreePct     float64
	MemTotalMiB     uint64
	SwapTotalMiB    uint64
}

// Reader reads /proc/meminfo, or a test-overridden path rooted
// elsewhere.
type Reader struct {
	path string
}

// New returns a Reader sourcing meminfo-shaped text from path.
func New(path string) *Reader {
	return &Reader{path: path}
}

// Default returns a Reader pointed at the real /proc/meminfo.
func Default() *Reader {
	return New("/proc/meminfo")
}

// Read opens and parses the configured meminfo source.
func (r *Reader) Read() (Snapshot, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads meminfo-shaped "Key: value kB" lines from r and derives
// a Snapshot. It fails with ParseError if MemTotal, MemAvailable,
// SwapTotal, or SwapFree is missing.
func Parse(r io.Reader) (Snapshot, error) {
	vals := make(map[string]uint64, 4)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		i := strings.IndexByte(line, ':')
		if i < 0 {
			continue
		}
		key := line[:i]
		switch key {
		case "MemTotal", "MemAvailable", "SwapTotal", "SwapFree":
		default:
			continue
		}
		fields := strings.Fields(line[i+1:])
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			continue
		}
		vals[key] = v
	}
	if err := sc.Err(); err != nil {
		return Snapshot{}, err
	}

	memTotal, ok1 := vals["MemTotal"]
	memAvail, ok2 := vals["MemAvailable"]
	swapTotal, ok3 := vals["SwapTotal"]
	swapFree, ok4 := vals["SwapFree"]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return Snapshot{}, ParseError
	}

	snap := Snapshot{
		MemTotalKiB:  memTotal,
		SwapTotalKiB: swapTotal,
		MemTotalMiB:  memTotal / 1024,
		SwapTotalMiB: swapTotal / 1024,
	}

	if memTotal > 0 {
		snap.MemAvailablePct = 100 * float64(memAvail) / float64(memTotal)
	}

	if swapTotal == 0 {
		snap.SwapFreePct = 100
	} else {
		snap.SwapFreePct = 100 * float64(swapFree) / float64(swapTotal)
	}

	return snap, nil
}
