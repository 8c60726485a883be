package pwtiming

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/IMQS/log"
	"github.com/IMQS/pwtiming/utils"
	"github.com/IMQS/serviceconfigsgo"
)

const (
	serviceConfigFileName = "pwtiming.json"
	serviceConfigVersion  = 1
	serviceName           = "PwTiming"
)

const DefaultMaxLength = 32

// Note: Be sure to keep doc.go up to date with the Config structure here

type Config struct {
	Alphabet           string            // Characters tried at every position, in order
	Comparison         string            // "early-exit" (vulnerable) or "constant-time"
	Passwords          map[string]string // The victim's accounts. Empty means DemoPasswords()
	MaxLength          int               // Upper bound (exclusive) on the inferred length
	InnerIterations    int               // Oracle calls per trial. Amplifies small differences
	OuterTrials        int               // Trials per sample. Raise this on noisy machines
	MaxIterations      int               // Content search budget in (position, character) trials. 0 = unlimited
	MaxDurationSeconds float64           // Content search wall-time budget. 0 = unlimited
	TopCandidates      int               // Number of length candidates to report
	VerboseLength      bool
	VerboseContent     bool
	LogFile            string // Empty means stdout. Relative paths are relative to the config file
	AuditEnabled       bool   // Report finished attacks to the audit service
	lastFileLoaded     string // Used for relative paths (such as LogFile)
}

func (x *Config) Reset() {
	*x = Config{}
	x.Alphabet = DefaultAlphabet
	x.Comparison = ComparisonEarlyExit
	x.MaxLength = DefaultMaxLength
	x.InnerIterations = DefaultInnerIterations
	x.OuterTrials = DefaultOuterTrials
	x.TopCandidates = DefaultTopCandidates
}

// Performs setup specific to unit tests
func (x *Config) ResetForUnitTests() {
	x.Reset()
	x.InnerIterations = 1
	x.OuterTrials = 1
	x.MaxIterations = 100000
}

func (x *Config) LoadFile(filename string) error {
	x.Reset()
	err := serviceconfig.GetConfig(filename, serviceName, serviceConfigVersion, serviceConfigFileName, x)
	if err != nil {
		return err
	}
	x.lastFileLoaded = filename
	return x.Validate()
}

func (x *Config) IsContainer() bool {
	return serviceconfig.IsContainer()
}

func (x *Config) Validate() error {
	if x.Alphabet == "" {
		return ErrEmptyAlphabet
	}
	if dup := utils.DuplicateChars(x.Alphabet); len(dup) != 0 {
		return fmt.Errorf("Alphabet contains duplicate characters '%v'", string(dup))
	}
	if _, err := CompareByName(x.Comparison); err != nil {
		return err
	}
	if x.MaxLength <= 0 {
		return fmt.Errorf("%w (MaxLength = %v)", ErrInvalidMaxLength, x.MaxLength)
	}
	if x.MaxIterations < 0 || x.MaxDurationSeconds < 0 {
		return errors.New("MaxIterations and MaxDurationSeconds must not be negative")
	}
	for user, password := range x.Passwords {
		if !utils.OnlyChars(password, x.Alphabet) {
			return fmt.Errorf("Password of '%v' contains characters outside of the alphabet", user)
		}
	}
	return nil
}

func (x *Config) Budget() Budget {
	return Budget{
		MaxIterations: x.MaxIterations,
		MaxDuration:   time.Duration(x.MaxDurationSeconds * float64(time.Second)),
	}
}

func (x *Config) passwords() map[string]string {
	if len(x.Passwords) == 0 {
		return DemoPasswords()
	}
	return x.Passwords
}

func (x *Config) logFilename() string {
	if x.LogFile == "" {
		return log.Stdout
	}
	if filepath.IsAbs(x.LogFile) || x.lastFileLoaded == "" {
		return x.LogFile
	}
	return filepath.Join(filepath.Dir(x.lastFileLoaded), x.LogFile)
}
