package pwtiming

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestSamplerRunsProbeExactly(t *testing.T) {
	vc := NewVirtualClock()
	s := &Sampler{Clock: vc, InnerIterations: 7, OuterTrials: 3}
	calls := 0
	s.Measure(func() { calls++ })
	assert.Equal(t, 21, calls)
}

func TestSamplerReportsMinimumTrial(t *testing.T) {
	vc := NewVirtualClock()
	s := &Sampler{Clock: vc, InnerIterations: 2, OuterTrials: 4}
	// Each entry is the cost of one probe call; two calls make a trial
	costs := []time.Duration{5, 5, 3, 1, 9, 9, 2, 3}
	call := 0
	probe := func() {
		vc.Advance(costs[call%len(costs)])
		call++
	}

	assert.Equal(t, []time.Duration{10, 4, 18, 5}, s.MeasureAll(probe))
	assert.Equal(t, time.Duration(4), s.Measure(probe))
}

func TestSamplerClampsCounts(t *testing.T) {
	s := &Sampler{Clock: NewVirtualClock(), InnerIterations: 0, OuterTrials: -3}
	calls := 0
	trials := s.MeasureAll(func() { calls++ })
	assert.Equal(t, 1, calls)
	assert.Len(t, trials, 1)
}

func TestSamplerWithMockClock(t *testing.T) {
	mock := clock.NewMock()
	s := &Sampler{Clock: mock, InnerIterations: 2, OuterTrials: 3}
	d := s.Measure(func() { mock.Add(time.Millisecond) })
	assert.Equal(t, 2*time.Millisecond, d)
}

func TestNewSampler(t *testing.T) {
	s := NewSampler()
	assert.Equal(t, DefaultInnerIterations, s.InnerIterations)
	assert.Equal(t, DefaultOuterTrials, s.OuterTrials)

	s.InnerIterations = 10
	s.OuterTrials = 2
	d := s.Measure(func() { time.Sleep(time.Microsecond) })
	assert.True(t, d >= 10*time.Microsecond, "10 sleeps of 1µs measured as %v", d)
}
