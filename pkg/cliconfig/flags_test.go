package cliconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePctPair_PrimaryOnlyDefaultsSecondaryToHalf(t *testing.T) {
	p, err := ParsePctPair("10", 99)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.Primary)
	assert.Equal(t, 5.0, p.Secondary)
}

func TestParsePctPair_BothGiven(t *testing.T) {
	p, err := ParsePctPair("10,3", 99)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.Primary)
	assert.Equal(t, 3.0, p.Secondary)
}

func TestParsePctPair_OutOfRange(t *testing.T) {
	_, err := ParsePctPair("150", 99)
	assert.Error(t, err)
}

func TestParsePctPair_SecondaryExceedsPrimary(t *testing.T) {
	_, err := ParsePctPair("10,20", 99)
	assert.Error(t, err)
}

func TestParsePctPair_Malformed(t *testing.T) {
	_, err := ParsePctPair("not-a-number", 99)
	assert.Error(t, err)
}

func TestParseAbsPair_Empty(t *testing.T) {
	p, err := ParseAbsPair("")
	require.NoError(t, err)
	assert.False(t, p.Set)
}

func TestParseAbsPair_PrimaryOnly(t *testing.T) {
	p, err := ParseAbsPair("2048000")
	require.NoError(t, err)
	assert.True(t, p.Set)
	assert.Equal(t, uint64(2048000), p.Primary)
	assert.Equal(t, uint64(1024000), p.Secondary)
}

func TestParseAbsPair_Both(t *testing.T) {
	p, err := ParseAbsPair("2048000,512000")
	require.NoError(t, err)
	assert.Equal(t, uint64(2048000), p.Primary)
	assert.Equal(t, uint64(512000), p.Secondary)
}
