//go:build linux

package meminfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMeminfo(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "meminfo")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParse_Basic(t *testing.T) {
	body := `MemTotal:       16384000 kB
MemFree:         1000000 kB
MemAvailable:    8192000 kB
SwapTotal:       2048000 kB
SwapFree:        1024000 kB
`
	snap, err := Parse(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, uint64(16384000), snap.MemTotalKiB)
	assert.Equal(t, uint64(2048000), snap.SwapTotalKiB)
	assert.Equal(t, uint64(16000), snap.MemTotalMiB)
	assert.Equal(t, uint64(2000), snap.SwapTotalMiB)
	assert.InDelta(t, 50.0, snap.MemAvailablePct, 0.01)
	assert.InDelta(t, 50.0, snap.SwapFreePct, 0.01)
}

func TestParse_ZeroSwapTotalForcesFullSwapFree(t *testing.T) {
	body := `MemTotal:       16384000 kB
MemAvailable:    8192000 kB
SwapTotal:             0 kB
SwapFree:              0 kB
`
	snap, err := Parse(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), snap.SwapTotalKiB)
	assert.InDelta(t, 100.0, snap.SwapFreePct, 0.01)
}

func TestParse_MissingMandatoryKey(t *testing.T) {
	body := `MemTotal:       16384000 kB
SwapTotal:       2048000 kB
SwapFree:        1024000 kB
`
	_, err := Parse(strings.NewReader(body))
	assert.ErrorIs(t, err, ParseError)
}

func TestParse_IgnoresUnknownLines(t *testing.T) {
	body := `MemTotal:       16384000 kB
Buffers:          200000 kB
Cached:          1000000 kB
MemAvailable:    8192000 kB
SwapTotal:       2048000 kB
SwapFree:        2048000 kB
malformed line without colon
`
	snap, err := Parse(strings.NewReader(body))
	require.NoError(t, err)
	assert.InDelta(t, 100.0, snap.SwapFreePct, 0.01)
}

func TestReader_Read(t *testing.T) {
	path := writeMeminfo(t, "MemTotal:       16384000 kB\nMemAvailable:    4096000 kB\nSwapTotal:       2048000 kB\nSwapFree:         512000 kB\n")
	r := New(path)
	snap, err := r.Read()
	require.NoError(t, err)
	assert.InDelta(t, 25.0, snap.MemAvailablePct, 0.01)
	assert.InDelta(t, 25.0, snap.SwapFreePct, 0.01)
}

func TestReader_Read_MissingFile(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "nope"))
	_, err := r.Read()
	assert.Error(t, err)
}
