package main

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/IMQS/log"
	"github.com/IMQS/pwtiming/pwtiming"
	"github.com/IMQS/pwtiming/utils"
	"gonum.org/v1/gonum/stat"
)

// Runs the attack against the simulated oracle, over many random secrets and noise levels,
// and writes the success rates to output.csv.
//
// usage: sweep [secrets per length] [seed]

type SweepConfig struct {
	MaxSecretLength int
	Secrets         int   // Per (jitter, length) cell
	Jitters         []int // In cost units, added to every oracle call
	InnerIterations int
	OuterTrials     int
	MaxIterations   int
	Seed            int64
}

type Row struct {
	Jitter         int
	SecretLength   int
	Secrets        int
	LengthHits     int
	Cracked        int
	MeanIterations float64
}

func defaultSweepConfig() SweepConfig {
	return SweepConfig{
		MaxSecretLength: 12,
		Secrets:         20,
		Jitters:         []int{0, 1, 4, 16},
		InnerIterations: 50,
		OuterTrials:     3,
		MaxIterations:   5000,
		Seed:            1,
	}
}

func main() {
	cfg := defaultSweepConfig()
	if len(os.Args) > 1 {
		n, e := strconv.Atoi(os.Args[1])
		if e != nil || n < 1 {
			fmt.Printf("Invalid number of secrets '%v'\n", os.Args[1])
			os.Exit(1)
		}
		cfg.Secrets = n
	}
	if len(os.Args) > 2 {
		seed, e := strconv.ParseInt(os.Args[2], 10, 64)
		if e != nil {
			fmt.Printf("Invalid seed '%v'\n", os.Args[2])
			os.Exit(1)
		}
		cfg.Seed = seed
	}

	rows, e := runSweep(cfg, utils.RandomString)
	if e != nil {
		fmt.Printf("Error: %v\n", e)
		os.Exit(1)
	}
	for _, r := range rows {
		fmt.Printf("jitter %3v  length %2v  length %3v/%-3v  cracked %3v/%-3v  iterations %.0f\n",
			r.Jitter, r.SecretLength, r.LengthHits, r.Secrets, r.Cracked, r.Secrets, r.MeanIterations)
	}

	out, e := toCSV(rows)
	if e == nil {
		e = os.WriteFile("output.csv", []byte(out), 0666)
	}
	if e != nil {
		fmt.Printf("Error writing output.csv: %v\n", e)
		os.Exit(1)
	}
}

func runSweep(cfg SweepConfig, randomString func(length int, alphabet string) string) ([]Row, error) {
	logger := log.New(log.Stdout)
	rows := []Row{}
	for ij, jitter := range cfg.Jitters {
		for length := 1; length <= cfg.MaxSecretLength; length++ {
			row := Row{Jitter: jitter, SecretLength: length, Secrets: cfg.Secrets}
			iterations := []float64{}
			for i := 0; i < cfg.Secrets; i++ {
				secret := randomString(length, pwtiming.DefaultAlphabet)
				oracle := pwtiming.NewSimulatedOracle(pwtiming.NewPasswordDB(map[string]string{"victim": secret}, nil), pwtiming.VulnerableCost)
				if jitter > 0 {
					oracle.WithJitter(jitter, cfg.Seed+int64(ij*100000+length*1000+i))
				}
				sampler := &pwtiming.Sampler{
					Clock:           oracle.Clock,
					InnerIterations: cfg.InnerIterations,
					OuterTrials:     cfg.OuterTrials,
				}
				e := pwtiming.NewEngine(oracle, sampler, logger)
				e.Budget.MaxIterations = cfg.MaxIterations
				guesses := rand.New(rand.NewSource(cfg.Seed + int64(i)))
				e.RandomString = func(length int, alphabet string) string {
					b := make([]byte, length)
					for k := range b {
						b[k] = alphabet[guesses.Intn(len(alphabet))]
					}
					return string(b)
				}

				res, err := e.Attack("victim", pwtiming.DefaultMaxLength)
				if err != nil {
					return nil, err
				}
				if res.Length.Length == length {
					row.LengthHits++
				}
				if res.Success() {
					row.Cracked++
				}
				iterations = append(iterations, float64(res.Content.Iterations))
			}
			if len(iterations) != 0 {
				row.MeanIterations = stat.Mean(iterations, nil)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func toCSV(rows []Row) (string, error) {
	sb := strings.Builder{}
	w := csv.NewWriter(&sb)
	w.Write([]string{"jitter", "length", "secrets", "length_hits", "cracked", "mean_iterations"})
	for _, r := range rows {
		w.Write([]string{
			strconv.Itoa(r.Jitter),
			strconv.Itoa(r.SecretLength),
			strconv.Itoa(r.Secrets),
			strconv.Itoa(r.LengthHits),
			strconv.Itoa(r.Cracked),
			strconv.FormatFloat(r.MeanIterations, 'f', 1, 64),
		})
	}
	w.Flush()
	return sb.String(), w.Error()
}
