package pwtiming

import (
	"github.com/IMQS/log"
)

const TestConfig1 = "!TESTCONFIG1"

// LoadTestConfig sets up a central whose oracle is simulated, with the vulnerable cost model
// and no noise, so that an attack always succeeds and runs quickly.
func LoadTestConfig(c *Central, testConfigName string) bool {
	if testConfigName == TestConfig1 {
		c.Config.ResetForUnitTests()
		c.Log = log.New(log.Stdout)
		c.DB = NewPasswordDB(DemoPasswords(), EarlyExitCompare)
		oracle := NewSimulatedOracle(c.DB, VulnerableCost)
		sampler := &Sampler{
			Clock:           oracle.Clock,
			InnerIterations: c.Config.InnerIterations,
			OuterTrials:     c.Config.OuterTrials,
		}
		c.Engine = c.newEngine(oracle, sampler)
		return true
	}
	return false
}
