package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/IMQS/cli"
	"github.com/IMQS/pwtiming/health"
	"github.com/IMQS/pwtiming/pwtiming"
	"github.com/fatih/color"
)

func main() {
	app := cli.App{}
	app.Description = "pwtiming -c=configfile [options] command"
	app.DefaultExec = exec
	app.AddCommand("length", "Infer the length of a user's password, and show the most likely candidates", "user")
	app.AddCommand("crack", "Infer a user's password, given its length", "user", "length")
	app.AddCommand("attack", "Infer the length of a user's password, and then the password itself", "user")
	app.AddCommand("users", "List the users that can be attacked")
	app.AddCommand("calibrate", "Measure how noisy the timings are on this machine")
	app.AddValueOption("c", "configfile", "Specify the pwtiming config file. A pseudo file called "+pwtiming.TestConfig1+" loads a simulated, noise-free test configuration. This option is mandatory.")
	app.AddValueOption("maxlen", "length", "Upper bound (exclusive) on the inferred length")
	app.AddValueOption("inner", "count", "Oracle calls per trial")
	app.AddValueOption("trials", "count", "Trials per sample")
	app.AddValueOption("maxiter", "count", "Give up the content search after this many iterations")
	app.AddBoolOption("verbose", "Report the progress of each phase")
	app.AddBoolOption("constanttime", "Compare passwords in constant time, which should defeat the attack")
	os.Exit(app.Run())
}

func exec(cmdName string, args []string, options cli.OptionSet) int {
	c, err := loadCentral(options)
	if err != nil {
		fmt.Printf("%v\n", err)
		return 1
	}

	success := false
	switch cmdName {
	case "length":
		success = inferLength(c, args[0])
	case "crack":
		length, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Invalid length '%v'\n", args[1])
			return 1
		}
		success = crack(c, args[0], length)
	case "attack":
		success = attack(c, args[0])
	case "users":
		for _, user := range c.Users() {
			fmt.Printf("%v\n", user)
		}
		success = true
	case "calibrate":
		success = health.Check(c)
	}

	if success {
		return 0
	}
	return 1
}

func loadCentral(options cli.OptionSet) (*pwtiming.Central, error) {
	configFile := options["c"]
	_, constantTime := options["constanttime"]
	c := &pwtiming.Central{Config: &pwtiming.Config{}}

	if configFile == "" {
		return nil, fmt.Errorf("No config file specified. Use -c=configfile")
	} else if pwtiming.LoadTestConfig(c, configFile) {
		if constantTime {
			c.Config.Comparison = pwtiming.ComparisonConstantTime
			if oracle, ok := c.Engine.Oracle.(*pwtiming.SimulatedOracle); ok {
				oracle.Cost = pwtiming.UniformCost
			}
		}
	} else {
		if err := c.Config.LoadFile(configFile); err != nil {
			return nil, fmt.Errorf("Error loading config file '%v': %w", configFile, err)
		}
		if constantTime {
			c.Config.Comparison = pwtiming.ComparisonConstantTime
		}
		var err error
		if c, err = pwtiming.NewCentralFromConfig(c.Config); err != nil {
			return nil, err
		}
	}

	if err := applyOptions(c, options); err != nil {
		return nil, err
	}
	c.Engine.OnLengthRanked = printCandidates
	c.Engine.OnGuessAccepted = printAccepted
	return c, nil
}

// Command line options override the config file
func applyOptions(c *pwtiming.Central, options cli.OptionSet) error {
	ints := []struct {
		option string
		target *int
	}{
		{"maxlen", &c.Config.MaxLength},
		{"inner", &c.Engine.Sampler.InnerIterations},
		{"trials", &c.Engine.Sampler.OuterTrials},
		{"maxiter", &c.Engine.Budget.MaxIterations},
	}
	for _, opt := range ints {
		s, ok := options[opt.option]
		if !ok {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return fmt.Errorf("Invalid value '%v' for -%v", s, opt.option)
		}
		*opt.target = v
	}
	if _, ok := options["verbose"]; ok {
		c.Engine.VerboseLength = true
		c.Engine.VerboseContent = true
	}
	return nil
}

func inferLength(c *pwtiming.Central, user string) bool {
	res, err := c.Engine.InferLength(user, c.Config.MaxLength)
	if err != nil {
		fmt.Printf("Error inferring length of %v's password: %v\n", user, err)
		return false
	}
	if !c.Engine.VerboseLength {
		printCandidates(user, res.Candidates)
	}
	fmt.Printf("Most likely length: %v\n", color.New(color.FgWhite, color.Bold).Sprint(res.Length))
	return true
}

func crack(c *pwtiming.Central, user string, length int) bool {
	res, err := c.Engine.InferContent(user, length)
	if err != nil {
		fmt.Printf("Error inferring %v's password: %v\n", user, err)
		return false
	}
	return printContent(user, res)
}

func attack(c *pwtiming.Central, user string) bool {
	res, err := c.Engine.Attack(user, c.Config.MaxLength)
	if err != nil {
		fmt.Printf("Error attacking %v: %v\n", user, err)
		return false
	}
	fmt.Printf("Inferred length: %v\n", res.Length.Length)
	return printContent(user, res.Content)
}

func printContent(user string, res pwtiming.ContentResult) bool {
	if res.State != pwtiming.StateConverged {
		fmt.Printf("%v %v after %v iterations (%v), best guess '%v'\n", color.HiRedString("[!]"), res.Reason, res.Iterations, res.Elapsed, res.Guess)
		return false
	}
	fmt.Printf("Password of %v: %v (%v iterations, %v)\n", user, color.HiGreenString(res.Guess), res.Iterations, res.Elapsed)
	return true
}

func printCandidates(user string, candidates []pwtiming.Candidate) {
	fmt.Printf("%v\n", color.New(color.FgWhite, color.Bold).Sprintf("Length candidates for %v", user))
	for i, cand := range candidates {
		line := fmt.Sprintf("  %2v  %-4v %8v  %.3f", i+1, cand.Length, cand.Timing, cand.Ratio)
		if i == 0 {
			line = color.GreenString(line)
		}
		fmt.Println(line)
	}
}

// The character that was just changed is highlighted
func printAccepted(user string, guess string, position int) {
	fmt.Printf("%v: %v%v%v\n", user,
		color.HiBlackString(guess[:position]),
		color.HiGreenString(guess[position:position+1]),
		color.HiBlackString(guess[position+1:]))
}
