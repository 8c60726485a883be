package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/IMQS/log"
	"github.com/IMQS/pwtiming/pwtiming"
	"gonum.org/v1/gonum/stat"
)

/*
Times every possible leading chunk of a guess against the in-process demo password database,
using the real clock. This shows whether the early-exit comparison leaks enough on this machine
for the attack to work, before running it.

usage: timing-attack [user]
*/

const ChunkSize = 1
const NumTopChunks = 5

var ChunkSpaceSize uint64

func main() {
	user := "james"
	if len(os.Args) > 1 {
		user = os.Args[1]
	}
	ChunkSpaceSize = uint64(math.Pow(float64(len(pwtiming.DefaultAlphabet)), float64(ChunkSize)))

	db := pwtiming.NewPasswordDB(pwtiming.DemoPasswords(), pwtiming.EarlyExitCompare)
	sampler := pwtiming.NewSampler()
	engine := pwtiming.NewEngine(db, sampler, log.New(log.Stdout))

	lres, err := engine.InferLength(user, pwtiming.DefaultMaxLength)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Most likely length: %v\n", lres.Length)
	if lres.Length < ChunkSize {
		fmt.Printf("Length is shorter than a chunk\n")
		os.Exit(1)
	}

	padding := strings.Repeat(pwtiming.DefaultAlphabet[:1], lres.Length-ChunkSize)
	type chunkTime struct {
		chunk string
		mean  time.Duration
	}
	times := []chunkTime{}
	means := []float64{}
	for chunk := uint64(0); chunk < ChunkSpaceSize; chunk++ {
		attempt := chunkToString(chunk) + padding
		trials := sampler.MeasureAll(func() {
			db.Verify(user, attempt)
		})
		x := make([]float64, len(trials))
		for i, t := range trials {
			x[i] = float64(t)
		}
		mean := stat.Mean(x, nil)
		means = append(means, mean)
		times = append(times, chunkTime{chunkToString(chunk), time.Duration(mean)})
	}

	sort.SliceStable(times, func(i, j int) bool {
		return times[i].mean > times[j].mean
	})
	fmt.Printf("Average %v\n", time.Duration(stat.Mean(means, nil)))
	for i := 0; i < NumTopChunks && i < len(times); i++ {
		fmt.Printf("  '%v' %v\n", times[i].chunk, times[i].mean)
	}
}

func chunkToString(chunk uint64) string {
	corpus := pwtiming.DefaultAlphabet
	digits := make([]byte, ChunkSize)
	for i := 0; i < ChunkSize; i++ {
		q := chunk % uint64(len(corpus))
		chunk = chunk / uint64(len(corpus))
		digits[ChunkSize-i-1] = corpus[q]
	}
	return string(digits)
}
