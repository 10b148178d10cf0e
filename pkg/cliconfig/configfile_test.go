package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oomwatchd.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseConfigFile_RecognizedKeys(t *testing.T) {
	path := writeConfig(t, `
# a comment
; another comment
report_interval = 60
ignore_oom_score_adj = true
memory_low=10
memory_kill = 5
emerg_kill = doveadm, php-cgi
`)
	cfg, err := ParseConfigFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.ReportIntervalSec)
	assert.Equal(t, 60, *cfg.ReportIntervalSec)
	require.NotNil(t, cfg.IgnoreOOMScoreAdj)
	assert.True(t, *cfg.IgnoreOOMScoreAdj)
	require.NotNil(t, cfg.MemoryLow)
	assert.Equal(t, 10.0, *cfg.MemoryLow)
	assert.Equal(t, []string{"doveadm", "php-cgi"}, cfg.EmergKill)
}

func TestParseConfigFile_UnknownKeyWarnsNotFails(t *testing.T) {
	path := writeConfig(t, "totally_made_up_key=1\n")
	cfg, err := ParseConfigFile(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Warnings, 1)
}

func TestParseConfigFile_EmergKillTooManyNames(t *testing.T) {
	names := make([]string, 65)
	for i := range names {
		names[i] = "a"
	}
	path := writeConfig(t, "emerg_kill="+joinComma(names)+"\n")
	_, err := ParseConfigFile(path)
	assert.Error(t, err)
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}

func TestParseConfigFile_MissingFile(t *testing.T) {
	_, err := ParseConfigFile(filepath.Join(t.TempDir(), "nope.conf"))
	assert.Error(t, err)
}
