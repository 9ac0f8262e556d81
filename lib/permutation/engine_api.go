// Package permutation contains different execution engines for
// re-running a factorization on column-permuted copies of a matrix.
package permutation

import (
	"fmt"
	"github.com/tgehrmann/corrana/lib/datatypes"
	"github.com/tgehrmann/corrana/lib/settings"
)

// A Result is the outcome of one permutation repetition.
type Result struct {
	Rep              int
	ExplainedInertia []float64
	Err              error
}

// A Summary aggregates permutation results across repetitions.
type Summary struct {
	Reps int

	// PerRep holds one explained inertia vector per repetition,
	// indexed by repetition.
	PerRep [][]float64

	// Avg is the mean explained inertia per dimension over all
	// repetitions.
	Avg []float64
}

// A FactorizeFunc maps a labeled matrix to the explained inertia of
// its factorization. The analysis package supplies this so the engines
// do not depend on it.
type FactorizeFunc func(m *datatypes.LabeledMatrix) ([]float64, error)

// An engine takes permutation repetitions, reruns the factorization on
// the shuffled data and returns the explained inertia it finds.
type Engine interface {

	// Initialize provides the engine with the run settings and the
	// channel results should be delivered on.
	Initialize(config settings.CaSettings, results chan<- *Result)

	// Permute schedules repetition rep: shuffle every column of m
	// independently, factorize the shuffled copy, deliver the
	// explained inertia.
	Permute(m *datatypes.LabeledMatrix, rep int) error

	// Shutdown gives the engine a chance to cancel running computations when it is deleted.
	Shutdown() error
}

// Collect reads reps results off the channel and averages the
// explained inertia per dimension. A failed repetition aborts the
// collection.
func Collect(results <-chan *Result, reps int) (*Summary, error) {
	perRep := make([][]float64, reps)
	for i := 0; i < reps; i++ {
		res := <-results
		if res.Err != nil {
			return nil, fmt.Errorf("permutation repetition %d failed: %w", res.Rep, res.Err)
		}
		if res.Rep < 0 || res.Rep >= reps {
			return nil, fmt.Errorf("received results for repetition %d of %d", res.Rep, reps)
		}
		perRep[res.Rep] = res.ExplainedInertia
	}
	dims := 0
	for _, expl := range perRep {
		if len(expl) > dims {
			dims = len(expl)
		}
	}
	avg := make([]float64, dims)
	counts := make([]int, dims)
	for _, expl := range perRep {
		for d, v := range expl {
			avg[d] += v
			counts[d]++
		}
	}
	for d := range avg {
		if counts[d] > 0 {
			avg[d] /= float64(counts[d])
		}
	}
	return &Summary{
		Reps:   reps,
		PerRep: perRep,
		Avg:    avg,
	}, nil
}
