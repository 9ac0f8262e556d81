package permutation

import (
	"github.com/tgehrmann/corrana/lib/datatypes"
	"gonum.org/v1/gonum/mat"
	"math/rand"
)

// PermuteColumns shuffles every column of m independently, so each
// column keeps its multiset of values but the association between rows
// is destroyed. The input matrix is not modified.
func PermuteColumns(m *mat.Dense, rng *rand.Rand) *mat.Dense {
	rows, cols := m.Dims()
	ret := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		order := rng.Perm(rows)
		for i, from := range order {
			ret.Set(i, j, m.At(from, j))
		}
	}
	return ret
}

// PermutedCopy returns a labeled copy of m with every column shuffled.
// The repetition index offsets the seed, so repetitions differ from
// each other while a run as a whole stays reproducible.
func PermutedCopy(m *datatypes.LabeledMatrix, seed int64, rep int) *datatypes.LabeledMatrix {
	rng := rand.New(rand.NewSource(seed + int64(rep)))
	return datatypes.FromDense(m.RowNames, m.ColNames, PermuteColumns(m.Data, rng))
}
