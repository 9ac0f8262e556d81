package kafka

import (
	"github.com/tgehrmann/corrana/lib/datatypes"
	"github.com/tgehrmann/corrana/lib/settings"
)

// Topics for the permutation round trip between engine and workers.
const (
	JOBS_TOPIC    = "corrana_permutation_jobs"
	RESULTS_TOPIC = "corrana_permutation_results"
)

// A PermutationJob asks a worker to permute every column of Matrix,
// factorize the permuted copy with Config and report the explained
// inertia per dimension. Rep offsets the permutation seed so each
// repetition shuffles differently.
type PermutationJob struct {
	JobID  string
	Rep    int
	Config settings.CaSettings
	Matrix *datatypes.LabeledMatrix
}

// An InertiaResult is a worker's answer to a PermutationJob. Failures
// travel as text in Error because results cross process boundaries.
type InertiaResult struct {
	JobID            string
	Rep              int
	ExplainedInertia []float64
	Error            string
}
