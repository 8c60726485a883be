package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepWithoutNoise(t *testing.T) {
	cfg := SweepConfig{
		MaxSecretLength: 6,
		Secrets:         3,
		Jitters:         []int{0},
		InnerIterations: 1,
		OuterTrials:     1,
		MaxIterations:   10000,
		Seed:            7,
	}
	rows, e := runSweep(cfg, func(length int, alphabet string) string {
		return strings.Repeat(alphabet[length:length+1], length)
	})
	require.NoError(t, e)
	require.Len(t, rows, 6)
	for i, r := range rows {
		assert.Equal(t, i+1, r.SecretLength)
		assert.Equal(t, 3, r.LengthHits, "length %v", r.SecretLength)
		assert.Equal(t, 3, r.Cracked, "length %v", r.SecretLength)
	}
}

func TestToCSV(t *testing.T) {
	out, e := toCSV([]Row{{Jitter: 1, SecretLength: 4, Secrets: 10, LengthHits: 9, Cracked: 8, MeanIterations: 101.5}})
	require.NoError(t, e)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "jitter,length,secrets,length_hits,cracked,mean_iterations", lines[0])
	assert.Equal(t, "1,4,10,9,8,101.5", lines[1])
}
