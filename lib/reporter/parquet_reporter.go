package reporter

import (
	"fmt"
	"github.com/parquet-go/parquet-go"
	"github.com/tgehrmann/corrana/lib"
	"gonum.org/v1/gonum/mat"
	"log"
	"os"
	"path/filepath"
)

// The kinds of coordinates a CoordinateRow can hold.
const (
	KIND_STD_ROWS  = "std_rows"
	KIND_STD_COLS  = "std_cols"
	KIND_PRIN_ROWS = "prin_rows"
	KIND_PRIN_COLS = "prin_cols"
)

// A CoordinateRow holds one coordinate value in long format: all four
// coordinate matrices of a result share one file, distinguished by the
// kind column.
type CoordinateRow struct {
	Name  string  `parquet:"name,zstd"`
	Dim   string  `parquet:"dim,zstd"`
	Kind  string  `parquet:"kind,zstd"`
	Value float64 `parquet:"value"`
}

type DimensionRow struct {
	Dim            string  `parquet:"dim,zstd"`
	SingularValue  float64 `parquet:"singularValue"`
	PercentInertia float64 `parquet:"percentInertia"`
}

type ParquetReporter struct {
	resultID  string
	directory string

	coordsFile   *os.File
	dimsFile     *os.File
	coordsWriter *parquet.GenericWriter[CoordinateRow]
	dimsWriter   *parquet.GenericWriter[DimensionRow]

	maxRowsPerRowGroup int64
}

func NewParquetReporter(maxRows int64) *ParquetReporter {
	return &ParquetReporter{
		maxRowsPerRowGroup: maxRows,
	}
}

func (p *ParquetReporter) Initialize(resultID string, directory string) {
	if p.coordsWriter != nil {
		return
	}
	p.resultID = resultID
	p.directory = directory

	coordsPath := filepath.Join(directory, fmt.Sprintf("coords_%s.parquet", resultID))
	dimsPath := filepath.Join(directory, fmt.Sprintf("dims_%s.parquet", resultID))

	var err error
	p.coordsFile, err = os.OpenFile(coordsPath, os.O_WRONLY|os.O_CREATE, 0640)
	if err != nil {
		log.Printf("failed to open coordinates parquet file: %v\n", err)
		return
	}
	p.dimsFile, err = os.OpenFile(dimsPath, os.O_WRONLY|os.O_CREATE, 0640)
	if err != nil {
		log.Printf("failed to open dimensions parquet file: %v\n", err)
		return
	}
	p.coordsWriter = parquet.NewGenericWriter[CoordinateRow](p.coordsFile,
		parquet.MaxRowsPerRowGroup(p.maxRowsPerRowGroup))
	p.dimsWriter = parquet.NewGenericWriter[DimensionRow](p.dimsFile,
		parquet.MaxRowsPerRowGroup(p.maxRowsPerRowGroup))
}

// appendCoordinateRows flattens one coordinate matrix into long rows.
// A nil matrix contributes nothing.
func appendCoordinateRows(rows []CoordinateRow, kind string, names []string,
	dimLabels []string, coords *mat.Dense) []CoordinateRow {
	if coords == nil {
		return rows
	}
	for i, name := range names {
		for d, label := range dimLabels {
			rows = append(rows, CoordinateRow{
				Name:  name,
				Dim:   label,
				Kind:  kind,
				Value: coords.At(i, d),
			})
		}
	}
	return rows
}

func extractCoordinateRows(r *lib.Result) []CoordinateRow {
	rows := make([]CoordinateRow, 0, 2*r.Dims*(len(r.RowNames)+len(r.ColNames)))
	rows = appendCoordinateRows(rows, KIND_STD_ROWS, r.RowNames, r.DimLabels, r.StdCoordsRows)
	rows = appendCoordinateRows(rows, KIND_STD_COLS, r.ColNames, r.DimLabels, r.StdCoordsCols)
	rows = appendCoordinateRows(rows, KIND_PRIN_ROWS, r.RowNames, r.DimLabels, r.PrinCoordsRows)
	rows = appendCoordinateRows(rows, KIND_PRIN_COLS, r.ColNames, r.DimLabels, r.PrinCoordsCols)
	return rows
}

func (p *ParquetReporter) AddResult(r *lib.Result) error {
	if p.coordsWriter == nil || p.dimsWriter == nil {
		return fmt.Errorf("missing parquet writer for result %s", p.resultID)
	}
	rows := extractCoordinateRows(r)
	if len(rows) == 0 {
		log.Printf("warning: result %s carries no coordinates\n", p.resultID)
	} else {
		if _, err := p.coordsWriter.Write(rows); err != nil {
			return err
		}
	}
	expl := r.ExplainedInertia()
	dimRows := make([]DimensionRow, len(r.D))
	for i, label := range r.DimLabels {
		dimRows[i] = DimensionRow{
			Dim:            label,
			SingularValue:  r.D[i],
			PercentInertia: expl[i],
		}
	}
	_, err := p.dimsWriter.Write(dimRows)
	return err
}

// Flush finalizes and closes both parquet files. The reporter cannot
// be used afterwards.
func (p *ParquetReporter) Flush() error {
	if p.coordsWriter == nil || p.dimsWriter == nil {
		return nil
	}
	if err := p.coordsWriter.Close(); err != nil {
		return err
	}
	if err := p.dimsWriter.Close(); err != nil {
		return err
	}
	if err := p.coordsFile.Close(); err != nil {
		return err
	}
	return p.dimsFile.Close()
}
