package health

import (
	"errors"
	"testing"
	"time"

	"github.com/IMQS/pwtiming/pwtiming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]time.Duration{3, 1})
	assert.Equal(t, 2, s.Trials)
	assert.Equal(t, time.Duration(1), s.Min)
	assert.Equal(t, time.Duration(2), s.Mean)
	assert.Equal(t, time.Duration(1), s.StdDev)
	assert.Equal(t, 1.0, s.Noise())

	one := Summarize([]time.Duration{7})
	assert.Equal(t, time.Duration(7), one.Mean)
	assert.Equal(t, time.Duration(0), one.StdDev)

	assert.Equal(t, TrialStats{}, Summarize(nil))
	assert.Equal(t, 0.0, TrialStats{}.Noise())
}

func TestReport(t *testing.T) {
	c := &pwtiming.Central{Config: &pwtiming.Config{}}
	require.True(t, pwtiming.LoadTestConfig(c, pwtiming.TestConfig1))
	c.Engine.Sampler.OuterTrials = 3

	report, ok := Report(c)
	assert.True(t, ok)
	for _, user := range []string{"james", "jotaro", "rune"} {
		assert.Contains(t, report, user+":")
	}
	assert.Contains(t, report, "No errors")
	// The simulated oracle charges one unit for a guess of the wrong length
	assert.Contains(t, report, "min 1ns")
}

type brokenOracle struct{}

func (brokenOracle) Verify(userId, guess string) (bool, error) {
	return false, errors.New("Oracle is offline")
}

func TestReportWithErrors(t *testing.T) {
	c := &pwtiming.Central{Config: &pwtiming.Config{}}
	require.True(t, pwtiming.LoadTestConfig(c, pwtiming.TestConfig1))
	c.Engine.Oracle = brokenOracle{}

	report, ok := Report(c)
	assert.False(t, ok)
	assert.Contains(t, report, "ERROR")
	assert.Contains(t, report, "Oracle is offline")
	assert.NotContains(t, report, "No errors")
}
