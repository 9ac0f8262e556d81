package lib

import (
	"fmt"
	"github.com/tgehrmann/corrana/lib/datatypes"
	"github.com/tgehrmann/corrana/lib/residuals"
	"github.com/tgehrmann/corrana/lib/settings"
	"github.com/tgehrmann/corrana/lib/svd"
	"gonum.org/v1/gonum/mat"
	"log"
)

// A Factorizer turns labeled count matrices into correspondence
// analysis results. The zero value is not usable, construct one with
// NewFactorizer.
type Factorizer struct {
	config  settings.CaSettings
	backend svd.Backend
}

func NewFactorizer(config settings.CaSettings) (*Factorizer, error) {
	config = config.ApplyDefaults()
	backend, err := backendFor(config)
	if err != nil {
		return nil, err
	}
	return &Factorizer{
		config:  config,
		backend: backend,
	}, nil
}

func backendFor(config settings.CaSettings) (svd.Backend, error) {
	switch config.Backend {
	case settings.BACKEND_DENSE:
		return &svd.DenseBackend{}, nil
	case settings.BACKEND_RANDOMIZED:
		return &svd.RandomizedBackend{
			Oversample: config.Oversample,
			PowerIters: config.PowerIters,
			Seed:       config.Seed,
		}, nil
	}
	return nil, fmt.Errorf("unsupported svd backend %s", config.Backend)
}

// SetBackend replaces the svd implementation. Mostly useful in tests.
func (f *Factorizer) SetBackend(backend svd.Backend) {
	f.backend = backend
}

// Factorize runs the correspondence analysis pipeline on m: validate,
// drop all-zero rows and columns, select the top rows by variance,
// compute standardized residuals, factorize them at full thin rank and
// attach inertia. Depending on the settings the result then gets
// coordinates, or is truncated to the requested number of dimensions.
func (f *Factorizer) Factorize(m *datatypes.LabeledMatrix) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	working := m
	if f.config.RemoveZeros {
		var err error
		working, err = removeZeros(working)
		if err != nil {
			return nil, err
		}
	}
	working, err := f.selectTopRows(working)
	if err != nil {
		return nil, err
	}
	res, err := residuals.Compute(working.Data)
	if err != nil {
		return nil, err
	}
	fact, err := f.backend.Factorize(res.S, 0)
	if err != nil {
		rows, cols := res.S.Dims()
		return nil, fmt.Errorf("%s factorization failed for a %dx%d matrix with %d row and %d column labels: %w",
			f.backend.Name(), rows, cols, len(working.RowNames), len(working.ColNames), err)
	}
	ret := newResult(fact, res, working.RowNames, working.ColNames, Params{
		Backend: f.backend.Name(),
		Seed:    f.config.Seed,
		Top:     f.config.TopRows,
		Dims:    f.config.Dims,
	})
	ret = ret.WithInertia(res)
	if f.config.Coords {
		return ret.WithCoords(f.config.Dims, f.config.PrincCoords, false)
	}
	if f.config.Dims > 0 {
		ret = ret.Truncated(f.config.Dims)
	}
	return ret, nil
}

// selectTopRows applies the top-row filter when it is configured and
// meaningful. The selected rows follow the variance ranking. Asking
// for at least as many rows as the matrix has keeps the matrix as it
// is, in its original row order.
func (f *Factorizer) selectTopRows(m *datatypes.LabeledMatrix) (*datatypes.LabeledMatrix, error) {
	top := f.config.TopRows
	rows := m.Rows()
	if top <= 0 || top == rows {
		return m, nil
	}
	if top > rows {
		log.Printf("warning: requested the top %d rows of a matrix with only %d\n", top, rows)
		return m, nil
	}
	chosen, err := TopVarianceRows(m.Data, top)
	if err != nil {
		return nil, err
	}
	return subsetRows(m, chosen), nil
}

// subsetRows builds a new labeled matrix from the given rows of m, in
// the given order.
func subsetRows(m *datatypes.LabeledMatrix, keep []int) *datatypes.LabeledMatrix {
	data := mat.NewDense(len(keep), m.Cols(), nil)
	names := make([]string, len(keep))
	for to, from := range keep {
		names[to] = m.RowNames[from]
		data.SetRow(to, m.Data.RawRowView(from))
	}
	return datatypes.FromDense(names, m.ColNames, data)
}

// removeZeros drops rows and columns that sum to zero. They carry no
// mass and would only contribute empty dimensions.
func removeZeros(m *datatypes.LabeledMatrix) (*datatypes.LabeledMatrix, error) {
	rows := m.Rows()
	cols := m.Cols()
	rowSums := make([]float64, rows)
	colSums := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.Data.At(i, j)
			rowSums[i] += v
			colSums[j] += v
		}
	}
	keepRows := []int{}
	for i, sum := range rowSums {
		if sum > 0 {
			keepRows = append(keepRows, i)
		}
	}
	keepCols := []int{}
	for j, sum := range colSums {
		if sum > 0 {
			keepCols = append(keepCols, j)
		}
	}
	if len(keepRows) == rows && len(keepCols) == cols {
		return m, nil
	}
	if len(keepRows) == 0 || len(keepCols) == 0 {
		return nil, datatypes.ValidationError{Reason: "all rows and columns sum to zero"}
	}
	log.Printf("warning: dropping %d all-zero rows and %d all-zero columns\n",
		rows-len(keepRows), cols-len(keepCols))
	data := mat.NewDense(len(keepRows), len(keepCols), nil)
	rowNames := make([]string, len(keepRows))
	colNames := make([]string, len(keepCols))
	for to, from := range keepCols {
		colNames[to] = m.ColNames[from]
	}
	for to, from := range keepRows {
		rowNames[to] = m.RowNames[from]
		for jto, jfrom := range keepCols {
			data.Set(to, jto, m.Data.At(from, jfrom))
		}
	}
	return datatypes.FromDense(rowNames, colNames, data), nil
}
