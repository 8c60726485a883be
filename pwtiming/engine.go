package pwtiming

import (
	"errors"
	"fmt"
	"time"

	"github.com/IMQS/log"
	"github.com/IMQS/pwtiming/utils"
)

// Letters a to z, followed by space. This is also the order in which candidates are tried.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz "

const DefaultTopCandidates = 5

var (
	ErrInvalidMaxLength = errors.New("Maximum length must be positive")
	ErrInvalidLength    = errors.New("Length must not be negative")
	ErrEmptyAlphabet    = errors.New("Alphabet is empty")
)

// Engine infers a user's password from the time that Oracle takes to reject guesses.
// It runs every measurement synchronously, one after the other; it is not safe for concurrent use.
type Engine struct {
	Oracle        Oracle
	Sampler       *Sampler
	Alphabet      string
	Budget        Budget
	TopCandidates int // Number of length candidates reported by InferLength
	Log           *log.Logger
	Auditor       Auditor // Optional. Notified after every Attack

	// Progress reporting, per phase
	VerboseLength   bool
	VerboseContent  bool
	OnLengthRanked  func(userId string, candidates []Candidate)
	OnGuessAccepted func(userId, guess string, position int)

	// Generates the random guesses. Defaults to utils.RandomString.
	RandomString func(length int, alphabet string) string
}

func NewEngine(oracle Oracle, sampler *Sampler, logger *log.Logger) *Engine {
	e := &Engine{
		Oracle:        oracle,
		Sampler:       sampler,
		Alphabet:      DefaultAlphabet,
		TopCandidates: DefaultTopCandidates,
		Log:           logger,
		RandomString:  utils.RandomString,
	}
	if e.Sampler == nil {
		e.Sampler = NewSampler()
	}
	if e.Log == nil {
		e.Log = log.New(log.Stdout)
	}
	return e
}

// AttackResult is the outcome of both phases against one user
type AttackResult struct {
	User    string
	Length  LengthResult
	Content ContentResult
}

// Success is true only when the content phase found a guess that the oracle accepted
func (r AttackResult) Success() bool {
	return r.Content.State == StateConverged
}

// Attack infers the password length, and then the password itself.
// Only lookup failures are returned as errors; a wrong length or a search that
// ran out of budget shows up in the result.
func (e *Engine) Attack(userId string, maxLength int) (AttackResult, error) {
	result := AttackResult{User: userId}
	var err error
	if result.Length, err = e.InferLength(userId, maxLength); err != nil {
		return result, err
	}
	if e.VerboseLength {
		e.logger().Infof("Using most likely length %v for %v", result.Length.Length, userId)
	}
	if result.Content, err = e.InferContent(userId, result.Length.Length); err != nil {
		return result, err
	}
	if e.Auditor != nil {
		e.Auditor.AuditAttack(result)
	}
	return result, nil
}

// Make sure that userId is known, before spending any time measuring
func (e *Engine) checkUser(userId string) error {
	_, err := e.Oracle.Verify(userId, "")
	return err
}

func (e *Engine) timeGuess(userId, guess string) time.Duration {
	return e.Sampler.Measure(func() {
		e.Oracle.Verify(userId, guess)
	})
}

func (e *Engine) logger() *log.Logger {
	if e.Log == nil {
		e.Log = log.New(log.Stdout)
	}
	return e.Log
}

func (e *Engine) randomString(length int) string {
	if e.RandomString == nil {
		return utils.RandomString(length, e.Alphabet)
	}
	return e.RandomString(length, e.Alphabet)
}

func (e *Engine) validate() error {
	if e.Alphabet == "" {
		return ErrEmptyAlphabet
	}
	if e.Oracle == nil || e.Sampler == nil {
		return fmt.Errorf("Engine is missing its oracle or sampler")
	}
	return nil
}
