package reporter

import (
	"encoding/csv"
	"fmt"
	"github.com/tgehrmann/corrana/lib"
	"gonum.org/v1/gonum/mat"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// A CsvReporter writes three csv files per result: the standard column
// coordinates (the embedding), the principal row coordinates (the
// loadings) and a per-dimension summary.
type CsvReporter struct {
	resultID  string
	directory string
}

func NewCsvReporter() *CsvReporter {
	return &CsvReporter{}
}

func (c *CsvReporter) Initialize(resultID string, directory string) {
	c.resultID = resultID
	c.directory = directory
	log.Printf("csv reporter writing result %s to %s\n", resultID, directory)
}

func (c *CsvReporter) AddResult(r *lib.Result) error {
	if c.resultID == "" {
		return fmt.Errorf("uninitialized reporter asked to store a result")
	}
	err := c.writeCoordinates("embedding", r.ColNames, r.DimLabels, r.StdCoordsCols)
	if err != nil {
		return err
	}
	err = c.writeCoordinates("loadings", r.RowNames, r.DimLabels, r.PrinCoordsRows)
	if err != nil {
		return err
	}
	return c.writeDimensions(r)
}

// writeCoordinates stores one coordinate matrix as a labeled table, a
// header with the dimension labels and one record per point. A result
// without the requested coordinates only gets a warning, the caller
// may simply have factorized with coordinates turned off.
func (c *CsvReporter) writeCoordinates(prefix string, names []string, dimLabels []string, coords *mat.Dense) error {
	if coords == nil {
		log.Printf("warning: result %s has no coordinates for the %s file\n", c.resultID, prefix)
		return nil
	}
	path := filepath.Join(c.directory, fmt.Sprintf("%s_%s.csv", prefix, c.resultID))
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0640)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	header := make([]string, 0, len(dimLabels)+1)
	header = append(header, "name")
	header = append(header, dimLabels...)
	if err = writer.Write(header); err != nil {
		return err
	}
	ctr := 0
	for i, name := range names {
		record := make([]string, 0, len(dimLabels)+1)
		record = append(record, name)
		for d := range dimLabels {
			record = append(record, strconv.FormatFloat(coords.At(i, d), 'g', -1, 64))
		}
		if err = writer.Write(record); err != nil {
			return err
		}
		ctr++
		if ctr%1000 == 0 {
			writer.Flush()
			if err = writer.Error(); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func (c *CsvReporter) writeDimensions(r *lib.Result) error {
	path := filepath.Join(c.directory, fmt.Sprintf("dimensions_%s.csv", c.resultID))
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0640)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	if err = writer.Write([]string{"dim", "singularValue", "percentInertia"}); err != nil {
		return err
	}
	expl := r.ExplainedInertia()
	for i, label := range r.DimLabels {
		record := []string{
			label,
			strconv.FormatFloat(r.D[i], 'g', -1, 64),
			strconv.FormatFloat(expl[i], 'g', -1, 64),
		}
		if err = writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (c *CsvReporter) Flush() error {
	// This reporter does no internal buffering, so Flush is a noop.
	return nil
}
