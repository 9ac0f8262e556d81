package sources

import (
	"errors"
	"fmt"
	"github.com/parquet-go/parquet-go"
	"github.com/tgehrmann/corrana/lib/datatypes"
	"gonum.org/v1/gonum/mat"
	"io"
	"os"
)

// A MatrixCell is one record of a long format parquet file.
type MatrixCell struct {
	Row   string  `parquet:"row,zstd"`
	Col   string  `parquet:"col,zstd"`
	Value float64 `parquet:"value"`
}

// A ParquetSource reads a matrix stored in long format, one record per
// cell. Rows and columns keep the order they first appear in, cells
// the file does not mention are zero, and a repeated cell is an error.
type ParquetSource struct {
	Path string
}

func (s *ParquetSource) Read() (*datatypes.LabeledMatrix, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	reader := parquet.NewGenericReader[MatrixCell](file)
	defer reader.Close()

	rowIndex := make(map[string]int)
	colIndex := make(map[string]int)
	rowNames := []string{}
	colNames := []string{}
	values := make(map[[2]int]float64)

	buffer := make([]MatrixCell, 1000)
	for done := false; !done; {
		numRead, err := reader.Read(buffer)
		if err != nil {
			if errors.Is(err, io.EOF) {
				done = true
			} else {
				return nil, fmt.Errorf("failed to read cells from %s: %w", s.Path, err)
			}
		}
		for i := 0; i < numRead; i++ {
			cell := buffer[i]
			r, ok := rowIndex[cell.Row]
			if !ok {
				r = len(rowNames)
				rowIndex[cell.Row] = r
				rowNames = append(rowNames, cell.Row)
			}
			c, ok := colIndex[cell.Col]
			if !ok {
				c = len(colNames)
				colIndex[cell.Col] = c
				colNames = append(colNames, cell.Col)
			}
			key := [2]int{r, c}
			if _, exists := values[key]; exists {
				return nil, fmt.Errorf("%s contains cell (%s, %s) twice", s.Path, cell.Row, cell.Col)
			}
			values[key] = cell.Value
		}
	}
	if len(rowNames) == 0 {
		return nil, fmt.Errorf("%s contains no cells", s.Path)
	}
	data := mat.NewDense(len(rowNames), len(colNames), nil)
	for key, value := range values {
		data.Set(key[0], key[1], value)
	}
	m := datatypes.FromDense(rowNames, colNames, data)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
