package pwtiming

import (
	"time"

	"github.com/benbjohnson/clock"
)

const (
	DefaultInnerIterations = 1000
	DefaultOuterTrials     = 10
)

// Clock is the time source of a Sampler.
// clock.Clock from benbjohnson/clock satisfies it, and so does VirtualClock.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// Sampler times a probe by running it InnerIterations times per trial, for OuterTrials trials.
// The minimum trial is reported: scheduler and cache noise only ever add time, so the fastest
// trial is the closest to the intrinsic cost of the probe.
type Sampler struct {
	Clock           Clock
	InnerIterations int
	OuterTrials     int
}

// NewSampler returns a sampler on the wall clock with the default iteration counts
func NewSampler() *Sampler {
	return &Sampler{
		Clock:           clock.New(),
		InnerIterations: DefaultInnerIterations,
		OuterTrials:     DefaultOuterTrials,
	}
}

func (s *Sampler) counts() (inner, outer int) {
	inner, outer = s.InnerIterations, s.OuterTrials
	if inner < 1 {
		inner = 1
	}
	if outer < 1 {
		outer = 1
	}
	return
}

// Measure returns the minimum duration over all trials
func (s *Sampler) Measure(probe func()) time.Duration {
	var best time.Duration
	for i, d := range s.MeasureAll(probe) {
		if i == 0 || d < best {
			best = d
		}
	}
	return best
}

// MeasureAll returns the duration of every trial, in the order they ran
func (s *Sampler) MeasureAll(probe func()) []time.Duration {
	inner, outer := s.counts()
	trials := make([]time.Duration, outer)
	for t := 0; t < outer; t++ {
		start := s.Clock.Now()
		for i := 0; i < inner; i++ {
			probe()
		}
		trials[t] = s.Clock.Since(start)
	}
	return trials
}
