package lib

import (
	"fmt"
	"gonum.org/v1/gonum/mat"
	"math"
)

// Selectors for the principal coordinates WithCoords derives.
const (
	PRINC_NONE = 0
	PRINC_ROWS = 1
	PRINC_COLS = 2
	PRINC_BOTH = 3
)

// WithCoords returns a copy of r with coordinate matrices filled in.
// A positive dims smaller than the carried dimensionality truncates
// the result first. princCoords selects which principal coordinates
// to derive. 0: none, 1: rows only, 2: columns only, 3: both.
//
// Standard coordinates are computed for both rows and columns unless
// principalOnly is set, in which case the receiver must already carry
// the standard coordinates the principal ones derive from.
func (r *Result) WithCoords(dims int, princCoords int, principalOnly bool) (*Result, error) {
	if princCoords < PRINC_NONE || princCoords > PRINC_BOTH {
		return nil, fmt.Errorf("princCoords must be between 0 and 3, got %d", princCoords)
	}
	base := r
	if dims > 0 {
		base = r.Truncated(dims)
	}
	ret := base.clone()
	if !principalOnly {
		ret.StdCoordsRows = standardCoords(base.U, base.RowMasses)
		ret.StdCoordsCols = standardCoords(base.V, base.ColMasses)
	}
	if princCoords == PRINC_ROWS || princCoords == PRINC_BOTH {
		if ret.StdCoordsRows == nil {
			return nil, fmt.Errorf("standard row coordinates must exist before principal row coordinates can be derived")
		}
		ret.PrinCoordsRows = principalCoords(ret.StdCoordsRows, base.D)
	}
	if princCoords == PRINC_COLS || princCoords == PRINC_BOTH {
		if ret.StdCoordsCols == nil {
			return nil, fmt.Errorf("standard column coordinates must exist before principal column coordinates can be derived")
		}
		ret.PrinCoordsCols = principalCoords(ret.StdCoordsCols, base.D)
	}
	return ret, nil
}

// standardCoords divides every row of the singular vectors by the
// square root of its mass. Entries belonging to a zero mass come out
// as 0 rather than NaN or Inf.
func standardCoords(vectors *mat.Dense, masses []float64) *mat.Dense {
	rows, cols := vectors.Dims()
	ret := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		root := math.Sqrt(masses[i])
		if root == 0 {
			continue
		}
		for j := 0; j < cols; j++ {
			v := vectors.At(i, j) / root
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			ret.Set(i, j, v)
		}
	}
	return ret
}

// principalCoords scales each dimension of the standard coordinates by
// its singular value.
func principalCoords(std *mat.Dense, d []float64) *mat.Dense {
	rows, cols := std.Dims()
	ret := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols && j < len(d); j++ {
		for i := 0; i < rows; i++ {
			ret.Set(i, j, std.At(i, j)*d[j])
		}
	}
	return ret
}
