package datatypes

import (
	"encoding/json"
	"fmt"
	"gonum.org/v1/gonum/mat"
	"math"
)

// A ValidationError means the input data cannot be analyzed at all.
// Callers can match on this type to distinguish bad inputs from
// processing failures.
type ValidationError struct {
	Reason string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("invalid input matrix: %s", v.Reason)
}

// A LabeledMatrix is a dense nonnegative matrix with row and column names.
// This is the only container the analysis code accepts; adapters for
// csv and parquet inputs live in the sources package.
type LabeledMatrix struct {
	RowNames []string
	ColNames []string
	Data     *mat.Dense
}

func NewLabeledMatrix(rowNames []string, colNames []string, data []float64) (*LabeledMatrix, error) {
	r := len(rowNames)
	c := len(colNames)
	if r == 0 || c == 0 {
		return nil, ValidationError{Reason: "need at least one row name and one column name"}
	}
	if len(data) != r*c {
		return nil, ValidationError{Reason: fmt.Sprintf(
			"have %d values but %d row names x %d column names", len(data), r, c)}
	}
	m := &LabeledMatrix{
		RowNames: rowNames,
		ColNames: colNames,
		Data:     mat.NewDense(r, c, data),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func FromDense(rowNames []string, colNames []string, data *mat.Dense) *LabeledMatrix {
	return &LabeledMatrix{RowNames: rowNames, ColNames: colNames, Data: data}
}

func (m *LabeledMatrix) Rows() int {
	r, _ := m.Data.Dims()
	return r
}

func (m *LabeledMatrix) Cols() int {
	_, c := m.Data.Dims()
	return c
}

// Validate checks shape, label uniqueness and value ranges.
// All returned errors are ValidationErrors.
func (m *LabeledMatrix) Validate() error {
	if m == nil || m.Data == nil {
		return ValidationError{Reason: "no data"}
	}
	r, c := m.Data.Dims()
	if len(m.RowNames) != r {
		return ValidationError{Reason: fmt.Sprintf("have %d row names for %d rows", len(m.RowNames), r)}
	}
	if len(m.ColNames) != c {
		return ValidationError{Reason: fmt.Sprintf("have %d column names for %d columns", len(m.ColNames), c)}
	}
	if err := checkLabels(m.RowNames, "row"); err != nil {
		return err
	}
	if err := checkLabels(m.ColNames, "column"); err != nil {
		return err
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.Data.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return ValidationError{Reason: fmt.Sprintf("value at row %d, column %d is %f", i, j, v)}
			}
			if v < 0 {
				return ValidationError{Reason: fmt.Sprintf("negative value %f at row %d, column %d", v, i, j)}
			}
		}
	}
	return nil
}

func checkLabels(labels []string, axis string) error {
	seen := make(map[string]int, len(labels))
	for i, l := range labels {
		if l == "" {
			return ValidationError{Reason: fmt.Sprintf("%s %d has an empty name", axis, i)}
		}
		if prev, exists := seen[l]; exists {
			return ValidationError{Reason: fmt.Sprintf("%ss %d and %d share the name %q", axis, prev, i, l)}
		}
		seen[l] = i
	}
	return nil
}

func translateRows(data *mat.Dense) [][]float64 {
	r, c := data.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		copy(row, data.RawRowView(i))
		rows[i] = row
	}
	return rows
}

func retranslateRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, ValidationError{Reason: "no rows"}
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, ValidationError{Reason: fmt.Sprintf("row %d has %d values, expected %d", i, len(row), c)}
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), c, data), nil
}

func (m *LabeledMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		RowNames []string    `json:"rowNames"`
		ColNames []string    `json:"colNames"`
		Rows     [][]float64 `json:"rows"`
	}{
		RowNames: m.RowNames,
		ColNames: m.ColNames,
		Rows:     translateRows(m.Data),
	})
}

func (m *LabeledMatrix) UnmarshalJSON(data []byte) error {
	lm := &struct {
		RowNames []string    `json:"rowNames"`
		ColNames []string    `json:"colNames"`
		Rows     [][]float64 `json:"rows"`
	}{}
	if err := json.Unmarshal(data, &lm); err != nil {
		return err
	}
	dense, err := retranslateRows(lm.Rows)
	if err != nil {
		return err
	}
	m.RowNames = lm.RowNames
	m.ColNames = lm.ColNames
	m.Data = dense
	return nil
}

// A ScreeTable is the tabular form of a scree plot: per dimension the
// percentage of inertia it explains, plus the uniform share that a
// dimension would explain if all dimensions mattered equally.
// When the table was built with permutations, Permuted holds one
// explained-inertia vector per permutation rep.
type ScreeTable struct {
	DimLabels  []string    `json:"dimLabels"`
	Inertia    []float64   `json:"inertia"`
	AvgInertia float64     `json:"avgInertia"`
	Permuted   [][]float64 `json:"permuted,omitempty"`
}
