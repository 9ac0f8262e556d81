package lib

import (
	"fmt"
	"github.com/tgehrmann/corrana/lib/residuals"
	"github.com/tgehrmann/corrana/lib/svd"
	"gonum.org/v1/gonum/mat"
	"log"
)

// Params records how a factorization was produced.
type Params struct {
	Backend string
	Seed    int64
	Top     int
	Dims    int
}

// A Result is one finished correspondence analysis factorization.
// Results are immutable: operations that add or change state return a
// fresh copy and leave the receiver alone, so a Result can be shared
// between goroutines without locking.
type Result struct {
	// U holds the left singular vectors (one row per matrix row), V the
	// right singular vectors (one row per matrix column). D holds the
	// singular values in descending order.
	U *mat.Dense
	V *mat.Dense
	D []float64

	// DimLabels has one Dim<n> label per entry of D.
	DimLabels []string

	// Names of the rows and columns that went into the factorization.
	// RowNames reflects top-row selection and follows the variance
	// ranking when that selection happened.
	RowNames []string
	ColNames []string

	RowMasses []float64
	ColMasses []float64

	// TopRows is the number of rows actually used.
	TopRows int

	// Dims is the number of dimensions currently carried, always equal
	// to len(D).
	Dims int

	// TotInertia describes the full decomposition and survives
	// truncation unchanged, as do the row and column inertias.
	TotInertia float64
	RowInertia []float64
	ColInertia []float64

	// Coordinates are nil until WithCoords fills them in.
	StdCoordsRows  *mat.Dense
	StdCoordsCols  *mat.Dense
	PrinCoordsRows *mat.Dense
	PrinCoordsCols *mat.Dense

	Params Params
}

// newResult assembles a Result from a factorization and the residuals
// it was computed on. Dimension labels are assigned here, after the
// backend has returned, so they are deterministic no matter how the
// backend orders ties.
func newResult(f *svd.Factorization, res *residuals.Result, rowNames []string, colNames []string, params Params) *Result {
	k := len(f.D)
	labels := make([]string, k)
	for i := range labels {
		labels[i] = fmt.Sprintf("Dim%d", i+1)
	}
	return &Result{
		U:         f.U,
		V:         f.V,
		D:         f.D,
		DimLabels: labels,
		RowNames:  rowNames,
		ColNames:  colNames,
		RowMasses: res.RowMasses,
		ColMasses: res.ColMasses,
		TopRows:   len(rowNames),
		Dims:      k,
		Params:    params,
	}
}

// clone returns a shallow copy. Fields the caller replaces afterwards
// must not be written through, all others can be shared because
// results are never mutated.
func (r *Result) clone() *Result {
	ret := *r
	return &ret
}

// WithInertia returns a copy of r with total, row and column inertia
// filled in from the residuals the factorization was computed on. The
// total is the sum of the squared singular values; for an untruncated
// factorization it equals both the sum of the row inertias and the sum
// of the column inertias.
func (r *Result) WithInertia(res *residuals.Result) *Result {
	ret := r.clone()
	tot := 0.0
	for _, d := range r.D {
		tot += d * d
	}
	ret.TotInertia = tot
	ret.RowInertia = res.SquaredRowSums()
	ret.ColInertia = res.SquaredColSums()
	return ret
}

// ExplainedInertia returns the percentage of inertia each carried
// dimension explains. The percentages refer to the carried dimensions
// and always sum to 100 unless all singular values are zero.
func (r *Result) ExplainedInertia() []float64 {
	ret := make([]float64, len(r.D))
	total := 0.0
	for _, d := range r.D {
		total += d * d
	}
	if total == 0 {
		return ret
	}
	for i, d := range r.D {
		ret[i] = 100 * d * d / total
	}
	return ret
}

// Truncated returns a result carrying only the leading dims
// dimensions. Truncating to the current dimensionality is a no-op, and
// so is a request for more dimensions than are carried, with a warning.
// Masses and inertia values are kept as they are; they describe the
// factorization this result was derived from.
func (r *Result) Truncated(dims int) *Result {
	if dims <= 0 || dims > r.Dims {
		log.Printf("warning: cannot truncate a result with %d dimensions to %d\n", r.Dims, dims)
		return r
	}
	if dims == r.Dims {
		return r
	}
	ret := r.clone()
	ret.Dims = dims
	ret.D = append([]float64(nil), r.D[:dims]...)
	ret.DimLabels = append([]string(nil), r.DimLabels[:dims]...)
	ret.U = truncateColumns(r.U, dims)
	ret.V = truncateColumns(r.V, dims)
	ret.StdCoordsRows = truncateColumns(r.StdCoordsRows, dims)
	ret.StdCoordsCols = truncateColumns(r.StdCoordsCols, dims)
	ret.PrinCoordsRows = truncateColumns(r.PrinCoordsRows, dims)
	ret.PrinCoordsCols = truncateColumns(r.PrinCoordsCols, dims)
	return ret
}

// truncateColumns copies the first dims columns of m. A nil matrix
// stays nil so absent coordinate fields survive truncation.
func truncateColumns(m *mat.Dense, dims int) *mat.Dense {
	if m == nil {
		return nil
	}
	rows, cols := m.Dims()
	if dims >= cols {
		return m
	}
	return mat.DenseCopyOf(m.Slice(0, rows, 0, dims))
}
