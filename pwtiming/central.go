package pwtiming

import (
	"github.com/IMQS/log"
)

// Central ties together the victim's password database, the sampler and the engine,
// as described by a Config.
type Central struct {
	Config *Config
	Log    *log.Logger
	DB     *PasswordDB
	Engine *Engine
}

func NewCentralFromConfig(config *Config) (*Central, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	compare, err := CompareByName(config.Comparison)
	if err != nil {
		return nil, err
	}
	c := &Central{
		Config: config,
		Log:    log.New(config.logFilename()),
		DB:     NewPasswordDB(config.passwords(), compare),
	}
	sampler := NewSampler()
	sampler.InnerIterations = config.InnerIterations
	sampler.OuterTrials = config.OuterTrials
	c.Engine = c.newEngine(c.DB, sampler)
	return c, nil
}

func (x *Central) newEngine(oracle Oracle, sampler *Sampler) *Engine {
	e := NewEngine(oracle, sampler, x.Log)
	e.Alphabet = x.Config.Alphabet
	e.Budget = x.Config.Budget()
	e.TopCandidates = x.Config.TopCandidates
	e.VerboseLength = x.Config.VerboseLength
	e.VerboseContent = x.Config.VerboseContent
	if x.Config.AuditEnabled {
		e.Auditor = NewIMQSAuditor(x.Log)
	}
	return e
}

// Users returns the ids that can be attacked
func (x *Central) Users() []string {
	return x.DB.Users()
}
