package sources

import (
	"encoding/csv"
	"fmt"
	"github.com/tgehrmann/corrana/lib/datatypes"
	"os"
	"strconv"
)

// A CsvSource reads a matrix from a csv file. The header record holds
// the column names, its first field is ignored. Every other record
// starts with its row name.
type CsvSource struct {
	Path string
}

func (s *CsvSource) Read() (*datatypes.LabeledMatrix, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.Path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s needs a header and at least one data record", s.Path)
	}
	colNames := records[0][1:]
	if len(colNames) == 0 {
		return nil, fmt.Errorf("%s has no data columns", s.Path)
	}
	rowNames := make([]string, 0, len(records)-1)
	data := make([]float64, 0, (len(records)-1)*len(colNames))
	for i, record := range records[1:] {
		rowNames = append(rowNames, record[0])
		for j, field := range record[1:] {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("on line %d of %s, failed to parse %s into a float for column %s: %v",
					i+2, s.Path, field, colNames[j], err)
			}
			data = append(data, value)
		}
	}
	return datatypes.NewLabeledMatrix(rowNames, colNames, data)
}
