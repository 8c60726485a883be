package pwtiming

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
)

// Candidate is one guess length, with its timing relative to the slowest length
type Candidate struct {
	Length int
	Timing time.Duration
	Ratio  float64 // Timing / (timing of the slowest candidate)
}

func (c Candidate) String() string {
	return fmt.Sprintf("%v (%.3f)", c.Length, c.Ratio)
}

type LengthResult struct {
	Length     int             // Most likely length
	Timings    []time.Duration // One sample per candidate length, indexed by length
	Candidates []Candidate     // Slowest first
}

// InferLength guesses the length of userId's password.
//
// A guess of the wrong length is rejected after the length check alone, whereas a guess
// of the right length makes the oracle go on to compare characters. For every length in
// [0, maxLength) we time a random guess of that length, and pick the slowest one.
// Ties go to the shorter length. If the password is maxLength characters or longer, the
// answer is simply wrong; there is no way to tell from the timings.
func (e *Engine) InferLength(userId string, maxLength int) (LengthResult, error) {
	if maxLength <= 0 {
		return LengthResult{}, fmt.Errorf("%w (%v)", ErrInvalidMaxLength, maxLength)
	}
	if err := e.validate(); err != nil {
		return LengthResult{}, err
	}
	if err := e.checkUser(userId); err != nil {
		return LengthResult{}, err
	}

	timings := make([]time.Duration, maxLength)
	samples := make([]float64, maxLength)
	for i := 0; i < maxLength; i++ {
		timings[i] = e.timeGuess(userId, e.randomString(i))
		samples[i] = float64(timings[i])
	}

	result := LengthResult{
		// MaxIdx returns the first index of the maximum
		Length:     floats.MaxIdx(samples),
		Timings:    timings,
		Candidates: rankCandidates(timings, e.TopCandidates),
	}

	if e.VerboseLength {
		e.logger().Infof("Length candidates for %v: %v", userId, formatCandidates(result.Candidates))
		if e.OnLengthRanked != nil {
			e.OnLengthRanked(userId, result.Candidates)
		}
	}
	return result, nil
}

// rankCandidates returns the top lengths, slowest first. Equal timings keep ascending length order.
func rankCandidates(timings []time.Duration, top int) []Candidate {
	if top <= 0 {
		top = DefaultTopCandidates
	}
	order := make([]int, len(timings))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case timings[a] > timings[b]:
			return -1
		case timings[a] < timings[b]:
			return 1
		}
		return 0
	})
	if len(order) > top {
		order = order[:top]
	}

	candidates := make([]Candidate, len(order))
	for i, length := range order {
		candidates[i] = Candidate{Length: length, Timing: timings[length], Ratio: 1}
		if slowest := timings[order[0]]; slowest > 0 {
			candidates[i].Ratio = float64(timings[length]) / float64(slowest)
		}
	}
	return candidates
}

func formatCandidates(candidates []Candidate) string {
	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
