package lib

import (
	"fmt"
	"github.com/tgehrmann/corrana/lib/datatypes"
	"github.com/tgehrmann/corrana/lib/permutation"
	"github.com/tgehrmann/corrana/lib/settings"
)

// AvgInertiaDims counts the dimensions whose explained inertia
// exceeds the uniform share of 100/k percent. At least 1.
func AvgInertiaDims(r *Result) int {
	expl := r.ExplainedInertia()
	avg := 100.0 / float64(len(expl))
	count := 0
	for _, e := range expl {
		if e > avg {
			count++
		}
	}
	if count < 1 {
		count = 1
	}
	return count
}

// MajInertiaDims returns the smallest number of leading dimensions
// whose cumulative explained inertia exceeds 80 percent.
func MajInertiaDims(r *Result) int {
	cumulative := 0.0
	for i, e := range r.ExplainedInertia() {
		cumulative += e
		if cumulative > 80.0 {
			return i + 1
		}
	}
	return r.Dims
}

// ScreeTable builds the data behind a scree plot: explained inertia
// per dimension, the uniform average as a reference line and, when a
// permutation summary is given, the permuted inertia per repetition.
func ScreeTable(r *Result, perm *permutation.Summary) *datatypes.ScreeTable {
	expl := r.ExplainedInertia()
	ret := &datatypes.ScreeTable{
		DimLabels:  append([]string(nil), r.DimLabels...),
		Inertia:    expl,
		AvgInertia: 100.0 / float64(len(expl)),
	}
	if perm != nil {
		ret.Permuted = perm.PerRep
	}
	return ret
}

// ElbowDims picks the number of dimensions by comparing the real
// explained inertia against column-permuted baselines. reps <= 0
// falls back to the configured repetition count.
func (f *Factorizer) ElbowDims(r *Result, m *datatypes.LabeledMatrix, reps int) (int, error) {
	if m == nil {
		return 0, fmt.Errorf("the elbow rule needs the original data matrix")
	}
	summary, err := f.PermutedInertia(m, r, reps)
	if err != nil {
		return 0, err
	}
	return elbowDecision(r.ExplainedInertia(), summary.Avg)
}

// elbowDecision compares the real explained inertia against the
// permuted average per dimension. The answer is the length of the
// leading run of dimensions that beat the baseline. When the baseline
// separates nothing (every dimension wins, or none does) all carried
// dimensions are kept. A first dimension that loses while later ones
// win means the data cannot be told apart from noise.
func elbowDecision(expl []float64, permAvg []float64) (int, error) {
	dims := len(expl)
	if len(permAvg) < dims {
		dims = len(permAvg)
	}
	if dims == 0 {
		return 0, fmt.Errorf("no dimensions to compare against the permuted baseline")
	}
	wins := make([]bool, dims)
	winCount := 0
	for i := 0; i < dims; i++ {
		if expl[i] > permAvg[i] {
			wins[i] = true
			winCount++
		}
	}
	if winCount == 0 || winCount == dims {
		return dims, nil
	}
	if !wins[0] {
		return 0, fmt.Errorf("the permuted baseline exceeds the real data at dimension 1, increase repetitions or choose another method")
	}
	run := 0
	for _, w := range wins {
		if !w {
			break
		}
		run++
	}
	return run, nil
}

// PickDims returns the recommended number of dimensions according to
// method. The scree plot is not a number, ask ScreeTable for it.
func (f *Factorizer) PickDims(method string, r *Result, m *datatypes.LabeledMatrix, reps int) (int, error) {
	switch method {
	case settings.METHOD_AVG_INERTIA:
		return AvgInertiaDims(r), nil
	case settings.METHOD_MAJ_INERTIA:
		return MajInertiaDims(r), nil
	case settings.METHOD_ELBOW_RULE:
		return f.ElbowDims(r, m, reps)
	case settings.METHOD_SCREE_PLOT:
		return 0, fmt.Errorf("%s produces a table, not a dimension count", method)
	}
	return 0, fmt.Errorf("unsupported dimension selection method %s", method)
}

// PermutedInertia runs reps column permutations of m through the
// configured engine and collects the explained inertia of each. The
// permuted runs keep the same top rows and dimensions as the result
// they will be compared to.
func (f *Factorizer) PermutedInertia(m *datatypes.LabeledMatrix, r *Result, reps int) (*permutation.Summary, error) {
	if m == nil {
		return nil, fmt.Errorf("permutation needs the data matrix")
	}
	if reps <= 0 {
		reps = f.config.Reps
	}
	config := f.config
	config.TopRows = r.TopRows
	config.Dims = r.Dims
	config.Coords = false

	engine, err := f.engineFor(config)
	if err != nil {
		return nil, err
	}
	// Buffered so every repetition can deliver before Collect runs.
	results := make(chan *permutation.Result, reps)
	engine.Initialize(config, results)
	defer engine.Shutdown()
	for rep := 0; rep < reps; rep++ {
		if err := engine.Permute(m, rep); err != nil {
			return nil, err
		}
	}
	return permutation.Collect(results, reps)
}

func (f *Factorizer) engineFor(config settings.CaSettings) (permutation.Engine, error) {
	switch f.config.Engine {
	case settings.ENGINE_INPROCESS:
		return permutation.NewInProcessEngine(f.repFactorizeFunc(config)), nil
	case settings.ENGINE_KAFKA:
		return &permutation.KafkaEngine{}, nil
	}
	return nil, fmt.Errorf("unsupported permutation engine %s", f.config.Engine)
}

// repFactorizeFunc builds the callback the in process engine runs for
// each permuted matrix. The backend is shared, it holds no per-call
// state.
func (f *Factorizer) repFactorizeFunc(config settings.CaSettings) permutation.FactorizeFunc {
	return func(m *datatypes.LabeledMatrix) ([]float64, error) {
		sub := &Factorizer{config: config, backend: f.backend}
		res, err := sub.Factorize(m)
		if err != nil {
			return nil, err
		}
		return res.ExplainedInertia(), nil
	}
}
