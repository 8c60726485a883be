package pwtiming

import (
	"testing"
	"time"

	"github.com/IMQS/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// newSimulatedEngine returns an engine whose every measurement is a single, noise-free oracle call
func newSimulatedEngine(passwords map[string]string, cost CostModel) (*Engine, *SimulatedOracle) {
	oracle := NewSimulatedOracle(NewPasswordDB(passwords, EarlyExitCompare), cost)
	sampler := &Sampler{Clock: oracle.Clock, InnerIterations: 1, OuterTrials: 1}
	e := NewEngine(oracle, sampler, log.New(log.Stdout))
	e.RandomString = seededRandomString(1)
	return e, oracle
}

func TestInferLengthAmmagamma(t *testing.T) {
	e, _ := newSimulatedEngine(DemoPasswords(), VulnerableCost)
	res, err := e.InferLength("james", 32)
	require.NoError(t, err)
	assert.Equal(t, 9, res.Length)
	assert.Len(t, res.Timings, 32)
	require.Len(t, res.Candidates, DefaultTopCandidates)
	assert.Equal(t, 9, res.Candidates[0].Length)
	assert.Equal(t, 1.0, res.Candidates[0].Ratio)
}

func TestInferLengthTrueLengthIsSlowest(t *testing.T) {
	random := seededRandomString(99)
	for trial := 0; trial < 200; trial++ {
		secret := random(1+trial%20, DefaultAlphabet)
		e, _ := newSimulatedEngine(map[string]string{"victim": secret}, VulnerableCost)
		e.RandomString = seededRandomString(int64(trial))

		res, err := e.InferLength("victim", 24)
		require.NoError(t, err)
		if !assert.Equal(t, len(secret), res.Length, "secret %q", secret) {
			continue
		}
		for i, d := range res.Timings {
			if i != len(secret) {
				assert.True(t, d < res.Timings[len(secret)], "length %v took %v, true length %v took %v", i, d, len(secret), res.Timings[len(secret)])
			}
		}
	}
}

func TestInferLengthWithNoise(t *testing.T) {
	random := seededRandomString(5)
	for trial := 0; trial < 50; trial++ {
		secret := random(1+trial%16, DefaultAlphabet)
		e, oracle := newSimulatedEngine(map[string]string{"victim": secret}, VulnerableCost)
		oracle.WithJitter(1, int64(trial))
		e.Sampler.InnerIterations = 100
		e.Sampler.OuterTrials = 3

		res, err := e.InferLength("victim", 20)
		require.NoError(t, err)
		assert.Equal(t, len(secret), res.Length, "secret %q", secret)
	}
}

func TestConstantTimeDefeatsInferLength(t *testing.T) {
	const maxLength = 8
	const runs = 400
	e, oracle := newSimulatedEngine(map[string]string{"victim": "snorlax"}, UniformCost)
	oracle.WithJitter(1000, 3)

	counts := make([]float64, maxLength)
	for i := 0; i < runs; i++ {
		res, err := e.InferLength("victim", maxLength)
		require.NoError(t, err)
		counts[res.Length]++
	}

	expected := make([]float64, maxLength)
	for i := range expected {
		expected[i] = runs / maxLength
	}
	chi2 := stat.ChiSquare(counts, expected)
	p := 1 - distuv.ChiSquared{K: maxLength - 1}.CDF(chi2)
	assert.True(t, p > 0.001, "length distribution %v is not uniform (chi2 = %.2f, p = %.5f)", counts, chi2, p)
	// The true length must not stand out
	assert.True(t, counts[7] < runs/4, "true length chosen %v times out of %v", counts[7], runs)
}

func TestInferLengthTieGoesToShorter(t *testing.T) {
	cost := func(actual, guess string) int {
		if len(guess) == 3 || len(guess) == 7 {
			return 5
		}
		return 1
	}
	e, _ := newSimulatedEngine(DemoPasswords(), cost)
	for i := 0; i < 10; i++ {
		res, err := e.InferLength("rune", 12)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Length)
		assert.Equal(t, 3, res.Candidates[0].Length)
		assert.Equal(t, 7, res.Candidates[1].Length)
		assert.Equal(t, 1.0, res.Candidates[1].Ratio)
	}

	flat, _ := newSimulatedEngine(DemoPasswords(), UniformCost)
	res, err := flat.InferLength("rune", 12)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Length)
}

func TestInferLengthBoundTooSmall(t *testing.T) {
	e, _ := newSimulatedEngine(DemoPasswords(), VulnerableCost)
	res, err := e.InferLength("james", 5)
	require.NoError(t, err)
	assert.True(t, res.Length >= 0 && res.Length < 5)
	assert.NotEqual(t, 9, res.Length)
}

func TestInferLengthErrors(t *testing.T) {
	e, _ := newSimulatedEngine(DemoPasswords(), VulnerableCost)

	_, err := e.InferLength("dio", 32)
	assert.ErrorIs(t, err, ErrUnknownUser)

	_, err = e.InferLength("james", 0)
	assert.ErrorIs(t, err, ErrInvalidMaxLength)

	e.Alphabet = ""
	_, err = e.InferLength("james", 32)
	assert.ErrorIs(t, err, ErrEmptyAlphabet)
}

func TestInferLengthReportsCandidates(t *testing.T) {
	e, _ := newSimulatedEngine(DemoPasswords(), VulnerableCost)
	e.TopCandidates = 3
	e.VerboseLength = true
	var reported []Candidate
	e.OnLengthRanked = func(userId string, candidates []Candidate) {
		assert.Equal(t, "jotaro", userId)
		reported = candidates
	}

	res, err := e.InferLength("jotaro", 16)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Length)
	assert.Equal(t, res.Candidates, reported)
	require.Len(t, reported, 3)
	for i := 1; i < len(reported); i++ {
		assert.True(t, reported[i].Timing <= reported[i-1].Timing)
		assert.True(t, reported[i].Ratio <= reported[i-1].Ratio)
	}
}

func TestRankCandidates(t *testing.T) {
	timings := []time.Duration{4, 8, 2, 8, 6}
	c := rankCandidates(timings, 4)
	require.Len(t, c, 4)
	assert.Equal(t, []int{1, 3, 4, 0}, []int{c[0].Length, c[1].Length, c[2].Length, c[3].Length})
	assert.Equal(t, 0.75, c[2].Ratio)
	assert.Equal(t, 0.5, c[3].Ratio)

	assert.Len(t, rankCandidates(timings, 0), DefaultTopCandidates)
	assert.Len(t, rankCandidates(timings[:2], 5), 2)

	zero := rankCandidates([]time.Duration{0, 0}, 5)
	assert.Equal(t, 1.0, zero[1].Ratio)
	assert.Equal(t, "1 (1.000)", zero[1].String())
}
