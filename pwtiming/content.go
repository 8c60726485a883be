package pwtiming

import (
	"fmt"
	"time"

	"github.com/IMQS/pwtiming/utils"
)

type SearchState int

const (
	StateSearching SearchState = iota
	StateConverged             // The oracle accepted the guess
	StateAborted               // Gave up. See AbortReason
)

func (s SearchState) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateConverged:
		return "converged"
	case StateAborted:
		return "aborted"
	}
	return fmt.Sprintf("SearchState(%d)", int(s))
}

type AbortReason int

const (
	ReasonNone AbortReason = iota
	ReasonIterationBudget
	ReasonTimeBudget
	ReasonEmptyRejected // Length 0 was requested, but the oracle rejects the empty string
)

func (r AbortReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonIterationBudget:
		return "iteration budget exhausted"
	case ReasonTimeBudget:
		return "time budget exhausted"
	case ReasonEmptyRejected:
		return "empty guess rejected"
	}
	return fmt.Sprintf("AbortReason(%d)", int(r))
}

// Budget bounds the content search. Zero values mean no limit, in which case a search
// against an oracle that leaks nothing will never end.
type Budget struct {
	MaxIterations int           // One iteration is one (position, character) trial
	MaxDuration   time.Duration // Measured on the sampler's clock
}

type ContentResult struct {
	Guess      string // The accepted password if State is StateConverged, otherwise the best guess so far
	State      SearchState
	Reason     AbortReason
	Iterations int
	Accepted   []string // Every intermediate guess that was adopted, in order
	Elapsed    time.Duration
}

// InferContent searches for a password of the given length, by greedy hill-climbing one
// position at a time.
//
// Starting from a random guess, the cursor cycles over the positions forever. At each position
// every character of the alphabet is tried, and the alternative is adopted only if it is strictly
// slower to reject than the current guess. A correct character makes the comparison run at least
// one position further, so it costs more; ties and regressions are rejected.
// Positions are revisited because an earlier decision may have been made on a noisy measurement.
func (e *Engine) InferContent(userId string, length int) (ContentResult, error) {
	if length < 0 {
		return ContentResult{}, fmt.Errorf("%w (%v)", ErrInvalidLength, length)
	}
	if err := e.validate(); err != nil {
		return ContentResult{}, err
	}
	if err := e.checkUser(userId); err != nil {
		return ContentResult{}, err
	}
	s := &contentSearch{
		engine: e,
		userId: userId,
		length: length,
		start:  e.Sampler.Clock.Now(),
	}
	return s.run()
}

type contentSearch struct {
	engine     *Engine
	userId     string
	length     int
	start      time.Time
	guess      string
	position   int
	charIndex  int
	iterations int
	accepted   []string
	state      SearchState
	reason     AbortReason
}

func (s *contentSearch) run() (ContentResult, error) {
	if s.length == 0 {
		if err := s.verifyEmpty(); err != nil {
			return ContentResult{}, err
		}
		return s.result(), nil
	}

	s.guess = s.engine.randomString(s.length)
	for s.state == StateSearching {
		if s.overBudget() {
			break
		}
		if err := s.step(); err != nil {
			return s.result(), err
		}
	}
	return s.result(), nil
}

func (s *contentSearch) verifyEmpty() error {
	ok, err := s.engine.Oracle.Verify(s.userId, "")
	if err != nil {
		return err
	}
	if ok {
		s.state = StateConverged
	} else {
		s.abort(ReasonEmptyRejected)
	}
	return nil
}

// overBudget moves the search to StateAborted if either limit has been reached
func (s *contentSearch) overBudget() bool {
	budget := s.engine.Budget
	if budget.MaxIterations > 0 && s.iterations >= budget.MaxIterations {
		s.abort(ReasonIterationBudget)
		return true
	}
	if budget.MaxDuration > 0 && s.engine.Sampler.Clock.Since(s.start) >= budget.MaxDuration {
		s.abort(ReasonTimeBudget)
		return true
	}
	return false
}

func (s *contentSearch) abort(reason AbortReason) {
	s.state = StateAborted
	s.reason = reason
	if s.engine.VerboseContent {
		s.engine.logger().Warnf("Search for %v aborted after %v iterations: %v", s.userId, s.iterations, reason)
	}
}

// step tries a single character at the current position
func (s *contentSearch) step() error {
	e := s.engine
	alt := utils.ReplaceAt(s.guess, s.position, e.Alphabet[s.charIndex])
	altTime := e.timeGuess(s.userId, alt)
	guessTime := e.timeGuess(s.userId, s.guess)
	s.iterations++

	ok, err := e.Oracle.Verify(s.userId, alt)
	if err != nil {
		return err
	}
	if ok {
		s.guess = alt
		s.state = StateConverged
		return nil
	}
	if altTime > guessTime {
		s.guess = alt
		s.accepted = append(s.accepted, alt)
		if e.VerboseContent {
			e.logger().Infof("%v: accepted '%v' (position %v)", s.userId, alt, s.position)
			if e.OnGuessAccepted != nil {
				e.OnGuessAccepted(s.userId, alt, s.position)
			}
		}
	}

	s.charIndex++
	if s.charIndex == len(e.Alphabet) {
		s.charIndex = 0
		s.position = (s.position + 1) % s.length
	}
	return nil
}

func (s *contentSearch) result() ContentResult {
	return ContentResult{
		Guess:      s.guess,
		State:      s.state,
		Reason:     s.reason,
		Iterations: s.iterations,
		Accepted:   s.accepted,
		Elapsed:    s.engine.Sampler.Clock.Since(s.start),
	}
}
