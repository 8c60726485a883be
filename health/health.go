package health

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/exp/maps"
	"gonum.org/v1/gonum/stat"

	"github.com/IMQS/pwtiming/pwtiming"
)

// TrialStats summarises the trial durations of one sample
type TrialStats struct {
	Trials int
	Min    time.Duration
	Mean   time.Duration
	StdDev time.Duration
}

// Noise is the standard deviation relative to the fastest trial
func (s TrialStats) Noise() float64 {
	if s.Min <= 0 {
		return 0
	}
	return float64(s.StdDev) / float64(s.Min)
}

func Summarize(trials []time.Duration) TrialStats {
	s := TrialStats{Trials: len(trials)}
	if len(trials) == 0 {
		return s
	}
	x := make([]float64, len(trials))
	s.Min = trials[0]
	for i, d := range trials {
		x[i] = float64(d)
		if d < s.Min {
			s.Min = d
		}
	}
	s.Mean = time.Duration(math.Round(stat.Mean(x, nil)))
	if len(x) > 1 {
		s.StdDev = time.Duration(math.Round(stat.StdDev(x, nil)))
	}
	return s
}

// Check prints a calibration report: how long the oracle takes to reject a guess of the wrong
// length, and how much that varies between trials. If the noise is large compared to the
// difference the attack relies on, raise InnerIterations or OuterTrials.
func Check(c *pwtiming.Central) bool {
	report, ok := Report(c)
	fmt.Print(report)
	return ok
}

func Report(c *pwtiming.Central) (string, bool) {
	sb := strings.Builder{}
	w := tabwriter.NewWriter(&sb, 0, 8, 1, '\t', tabwriter.AlignRight)
	errorSet := map[string]error{}
	sampler := c.Engine.Sampler

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Calibration\n")
	fmt.Fprintf(w, "-----------\n")
	fmt.Fprintf(w, "Comparison:\t%v\n", c.Config.Comparison)
	fmt.Fprintf(w, "Alphabet size:\t%v\n", len(c.Engine.Alphabet))
	fmt.Fprintf(w, "Inner iterations:\t%v\n", sampler.InnerIterations)
	fmt.Fprintf(w, "Outer trials:\t%v\n", sampler.OuterTrials)

	// Cost of the measurement loop itself
	empty := Summarize(sampler.MeasureAll(func() {}))
	fmt.Fprintf(w, "Empty probe:\tmin %v\tmean %v\tstddev %v\n", empty.Min, empty.Mean, empty.StdDev)

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Wrong-length guess, per user:\n")
	users := c.Users()
	if len(users) == 0 {
		fmt.Fprintf(w, "\tNo users\n")
	}
	for _, user := range users {
		if _, err := c.Engine.Oracle.Verify(user, ""); err != nil {
			errorSet[err.Error()] = err
			fmt.Fprintf(w, "\t%v:\tERROR\n", user)
			continue
		}
		// A guess longer than MaxLength can never match, so this always takes the length-mismatch path
		guess := strings.Repeat(c.Engine.Alphabet[:1], c.Config.MaxLength+1)
		s := Summarize(sampler.MeasureAll(func() {
			c.Engine.Oracle.Verify(user, guess)
		}))
		fmt.Fprintf(w, "\t%v:\tmin %v\tmean %v\tstddev %v\tnoise %.1f%%\n", user, s.Min, s.Mean, s.StdDev, 100*s.Noise())
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Errors")
	fmt.Fprintln(w, "------")

	errKeys := maps.Keys(errorSet)
	sort.Strings(errKeys)

	if len(errKeys) > 0 {
		for _, e := range errKeys {
			fmt.Fprintf(w, "%v\n", errorSet[e])
		}
	} else {
		fmt.Fprintf(w, "No errors\n")
	}

	w.Flush()
	return sb.String(), len(errKeys) == 0
}
