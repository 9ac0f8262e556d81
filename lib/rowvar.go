package lib

import (
	"github.com/tgehrmann/corrana/lib/residuals"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"log"
	"sort"
)

// RowVariances returns, for every row, the sample variance of its
// chi-square components tot * S[i,j]^2 across the columns. Rows whose
// deviation from independence is concentrated in a few columns score
// high, rows close to the expected profile score near zero.
func RowVariances(res *residuals.Result) []float64 {
	rows, cols := res.S.Dims()
	ret := make([]float64, rows)
	components := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			s := res.S.At(i, j)
			components[j] = res.Tot * s * s
		}
		ret[i] = stat.Variance(components, nil)
	}
	return ret
}

// TopVarianceRows ranks the rows of m by the variance of their
// chi-square components and returns the indices of the top rows, most
// variable first. Asking for more rows than exist keeps every row and
// logs a warning.
func TopVarianceRows(m *mat.Dense, top int) ([]int, error) {
	res, err := residuals.Compute(m)
	if err != nil {
		return nil, err
	}
	variances := RowVariances(res)
	rows := len(variances)
	if top > rows {
		log.Printf("warning: requested the top %d rows of a matrix with only %d\n", top, rows)
	}
	if top <= 0 || top > rows {
		top = rows
	}
	order := make([]int, rows)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return variances[order[a]] > variances[order[b]]
	})
	return order[:top], nil
}
