package pwtiming

import (
	"math/rand"
	"time"

	"github.com/IMQS/pwtiming/utils"
)

// CostModel returns the abstract work, in units, that the oracle performs to compare guess against actual
type CostModel func(actual, guess string) int

// VulnerableCost models EarlyExitCompare: one unit for the length check alone, and
// 2 + (leading matching characters) when the lengths agree and the scan runs.
func VulnerableCost(actual, guess string) int {
	if len(actual) != len(guess) {
		return 1
	}
	return 2 + utils.CommonPrefixLen(actual, guess)
}

// UniformCost models a constant-time comparison
func UniformCost(actual, guess string) int {
	return 1
}

// VirtualClock is a Clock whose time only moves when Advance is called.
// It is not safe for concurrent use.
type VirtualClock struct {
	now time.Time
}

func NewVirtualClock() *VirtualClock {
	return &VirtualClock{now: time.Unix(0, 0)}
}

func (c *VirtualClock) Now() time.Time {
	return c.now
}

func (c *VirtualClock) Since(t time.Time) time.Duration {
	return c.now.Sub(t)
}

func (c *VirtualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// SimulatedOracle answers exactly like its DB, but instead of spending real time it advances
// Clock according to Cost. This gives noise-free (or controlled-noise) timings for tests and sweeps.
type SimulatedOracle struct {
	DB    *PasswordDB
	Clock *VirtualClock
	Cost  CostModel
	Unit  time.Duration // Duration of one cost unit
	// Up to Jitter extra units are added to every call, drawn uniformly from Rand
	Jitter int
	Rand   *rand.Rand
}

func NewSimulatedOracle(db *PasswordDB, cost CostModel) *SimulatedOracle {
	return &SimulatedOracle{
		DB:    db,
		Clock: NewVirtualClock(),
		Cost:  cost,
		Unit:  time.Nanosecond,
	}
}

// WithJitter enables random noise of up to jitter units per call, seeded for reproducibility
func (x *SimulatedOracle) WithJitter(jitter int, seed int64) *SimulatedOracle {
	x.Jitter = jitter
	x.Rand = rand.New(rand.NewSource(seed))
	return x
}

func (x *SimulatedOracle) Verify(userId, guess string) (bool, error) {
	actual, err := x.DB.password(userId)
	if err != nil {
		return false, err
	}
	units := x.Cost(actual, guess)
	if x.Jitter > 0 && x.Rand != nil {
		units += x.Rand.Intn(x.Jitter + 1)
	}
	x.Clock.Advance(time.Duration(units) * x.Unit)
	return x.DB.compare(actual, guess), nil
}
