// Package permutation contains different execution engines for
// re-running a factorization on column-permuted copies of a matrix.
package permutation

import (
	"fmt"
	"github.com/tgehrmann/corrana/lib/datatypes"
	"github.com/tgehrmann/corrana/lib/settings"
	"log"
	"runtime"
	"sync"
)

// An InProcessEngine implements Engine on local goroutines.
type InProcessEngine struct {
	// These settings remain for the lifetime of an engine.
	config        settings.CaSettings
	resultChannel chan<- *Result
	factorize     FactorizeFunc

	// Bounds how many repetitions run at once.
	slots chan struct{}

	wg        sync.WaitGroup
	scheduled int
}

func NewInProcessEngine(factorize FactorizeFunc) *InProcessEngine {
	return &InProcessEngine{
		factorize: factorize,
		slots:     make(chan struct{}, runtime.NumCPU()),
	}
}

func (e *InProcessEngine) Initialize(config settings.CaSettings, results chan<- *Result) {
	e.config = config
	e.resultChannel = results
	e.scheduled = 0
}

// Permute runs one repetition on its own goroutine. Repetitions are
// independent of each other, so they need no synchronization beyond
// the results channel.
func (e *InProcessEngine) Permute(m *datatypes.LabeledMatrix, rep int) error {
	if e.resultChannel == nil {
		return fmt.Errorf("uninitialized engine asked to permute")
	}
	e.scheduled++
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.slots <- struct{}{}
		defer func() { <-e.slots }()
		permuted := PermutedCopy(m, e.config.Seed, rep)
		expl, err := e.factorize(permuted)
		e.resultChannel <- &Result{
			Rep:              rep,
			ExplainedInertia: expl,
			Err:              err,
		}
	}()
	return nil
}

// Shutdown waits for scheduled repetitions to finish delivering.
func (e *InProcessEngine) Shutdown() error {
	e.wg.Wait()
	log.Printf("in process permutation engine shutting down after %d repetitions\n", e.scheduled)
	return nil
}
