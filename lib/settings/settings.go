// Package settings contains all the parameters for correspondence analysis runs.
package settings

const (
	BACKEND_DENSE      = "dense"
	BACKEND_RANDOMIZED = "randomized"

	ENGINE_INPROCESS = "inprocess"
	ENGINE_KAFKA     = "kafka"

	METHOD_AVG_INERTIA = "avg_inertia"
	METHOD_MAJ_INERTIA = "maj_inertia"
	METHOD_SCREE_PLOT  = "scree_plot"
	METHOD_ELBOW_RULE  = "elbow_rule"
)

type CaSettings struct {
	// The number of rows to keep for the factorization, ranked by
	// chi-square row variance. Zero or negative means all rows.
	TopRows int

	// The number of singular dimensions to keep. The factorization is
	// always computed at full thin rank and truncated afterwards.
	// Zero or negative keeps everything.
	Dims int

	// Whether Factorize computes coordinates right away.
	Coords bool

	// Which principal coordinates to compute when Coords is set.
	// 0: none, 1: rows only, 2: columns only, 3: both.
	// Standard coordinates are always computed for both axes.
	PrincCoords int

	// Whether all-zero rows and columns are removed before factorization.
	RemoveZeros bool

	// The SVD backend. dense computes an exact thin SVD, randomized
	// uses a gaussian sketch and is cheaper on large matrices.
	Backend string

	// Extra sketch columns for the randomized backend.
	Oversample int

	// Power iterations for the randomized backend. More iterations
	// improve accuracy when singular values decay slowly.
	PowerIters int

	// Seed for the randomized backend and for column permutations.
	Seed int64

	// The execution engine for permutation reps.
	Engine string

	// The URL of the kafka broker, for the kafka engine.
	KafkaURL string

	// The number of permutation reps for the elbow rule.
	Reps int

	// Number of rows per row group in Parquet.
	// Bigger numbers mean more memory usage but better compression.
	// This is an int64 because the parquet library takes that type.
	MaxRowsPerRowGroup int64

	// The directory result files get written to.
	ResultsDirectory string
}

func (s CaSettings) ApplyDefaults() CaSettings {
	if s.Backend == "" {
		s.Backend = BACKEND_DENSE
	}
	if s.Engine == "" {
		s.Engine = ENGINE_INPROCESS
	}
	if s.Oversample == 0 {
		s.Oversample = 10
	}
	if s.PowerIters == 0 {
		s.PowerIters = 2
	}
	if s.Reps == 0 {
		s.Reps = 3
	}
	if s.Seed == 0 {
		s.Seed = 1
	}
	if s.MaxRowsPerRowGroup == 0 {
		s.MaxRowsPerRowGroup = 100000
	}
	return s
}
