package pwtiming

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	ErrUnknownUser       = errors.New("Unknown user")
	ErrUnknownComparison = errors.New("Unknown comparison")
)

// Names of the comparison routines that a PasswordDB can be configured with
const (
	ComparisonEarlyExit    = "early-exit"
	ComparisonConstantTime = "constant-time"
)

// An Oracle answers whether guess is the password of userId.
// Only the boolean is part of the contract; how long Verify takes is what the engine studies.
type Oracle interface {
	Verify(userId, guess string) (bool, error)
}

// CompareFunc reports whether guess equals the stored password actual
type CompareFunc func(actual, guess string) bool

// EarlyExitCompare returns false as soon as the lengths differ, or at the first mismatching position.
// Its running time therefore grows with the number of leading characters that match.
func EarlyExitCompare(actual, guess string) bool {
	if len(guess) != len(actual) {
		return false
	}
	for i := 0; i < len(actual); i++ {
		if guess[i] != actual[i] {
			return false
		}
	}
	return true
}

// ConstantTimeCompare hashes both strings before comparing them, so that neither the
// length nor the content of guess influences the running time.
// subtle.ConstantTimeCompare alone would still return early on a length mismatch.
func ConstantTimeCompare(actual, guess string) bool {
	a := sha256.Sum256([]byte(actual))
	g := sha256.Sum256([]byte(guess))
	return subtle.ConstantTimeCompare(a[:], g[:]) == 1
}

// CompareByName resolves one of the Comparison* names
func CompareByName(name string) (CompareFunc, error) {
	switch name {
	case ComparisonEarlyExit, "":
		return EarlyExitCompare, nil
	case ComparisonConstantTime:
		return ConstantTimeCompare, nil
	}
	return nil, fmt.Errorf("%w '%v'", ErrUnknownComparison, name)
}

// The password store used by the demonstration
func DemoPasswords() map[string]string {
	return map[string]string{
		"james":  "ammagamma",
		"rune":   "snorlax",
		"jotaro": "yareyare",
	}
}

// PasswordDB is the victim's account database. It is immutable once created.
type PasswordDB struct {
	passwords map[string]string
	compare   CompareFunc
}

// NewPasswordDB copies passwords, so later changes to the map are not observed.
// A nil compare means EarlyExitCompare.
func NewPasswordDB(passwords map[string]string, compare CompareFunc) *PasswordDB {
	if compare == nil {
		compare = EarlyExitCompare
	}
	return &PasswordDB{
		passwords: maps.Clone(passwords),
		compare:   compare,
	}
}

func (x *PasswordDB) Verify(userId, guess string) (bool, error) {
	actual, ok := x.passwords[userId]
	if !ok {
		return false, fmt.Errorf("%w '%v'", ErrUnknownUser, userId)
	}
	return x.compare(actual, guess), nil
}

// Users returns the known user ids in sorted order
func (x *PasswordDB) Users() []string {
	users := maps.Keys(x.passwords)
	slices.Sort(users)
	return users
}

// password is for the simulated oracle and for tests; it is not reachable through Oracle
func (x *PasswordDB) password(userId string) (string, error) {
	actual, ok := x.passwords[userId]
	if !ok {
		return "", fmt.Errorf("%w '%v'", ErrUnknownUser, userId)
	}
	return actual, nil
}
