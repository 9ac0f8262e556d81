// Package residuals computes the standardized residuals of a
// contingency matrix, together with its row and column masses.
package residuals

import (
	"github.com/tgehrmann/corrana/lib/datatypes"
	"gonum.org/v1/gonum/mat"
	"math"
)

type Result struct {
	// S is the matrix of standardized residuals.
	S *mat.Dense

	// Tot is the grand total of the input matrix.
	Tot float64

	// RowMasses and ColMasses are the row and column sums of the
	// input after scaling it to sum 1.
	RowMasses []float64
	ColMasses []float64
}

// Compute builds S[i,j] = (P[i,j] - r[i]*c[j]) / sqrt(r[i]*c[j]) where
// P is the input scaled to sum 1 and r, c are its row and column sums.
// Cells with zero expected value stay 0 instead of becoming NaN.
func Compute(m *mat.Dense) (*Result, error) {
	r, c := m.Dims()
	tot := mat.Sum(m)
	if tot == 0 {
		return nil, datatypes.ValidationError{Reason: "matrix sums to zero, masses are undefined"}
	}

	rowMasses := make([]float64, r)
	colMasses := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			p := m.At(i, j) / tot
			rowMasses[i] += p
			colMasses[j] += p
		}
	}

	s := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			expected := rowMasses[i] * colMasses[j]
			if expected == 0 {
				continue
			}
			p := m.At(i, j) / tot
			s.Set(i, j, (p-expected)/math.Sqrt(expected))
		}
	}

	return &Result{S: s, Tot: tot, RowMasses: rowMasses, ColMasses: colMasses}, nil
}

// SquaredRowSums returns the row-wise sums of squared residuals.
// These are the per-row contributions to the total inertia.
func (r *Result) SquaredRowSums() []float64 {
	rows, cols := r.S.Dims()
	ret := make([]float64, rows)
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			v := r.S.At(i, j)
			sum += v * v
		}
		ret[i] = sum
	}
	return ret
}

// SquaredColSums returns the column-wise sums of squared residuals.
func (r *Result) SquaredColSums() []float64 {
	rows, cols := r.S.Dims()
	ret := make([]float64, cols)
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			v := r.S.At(i, j)
			sum += v * v
		}
		ret[j] = sum
	}
	return ret
}
