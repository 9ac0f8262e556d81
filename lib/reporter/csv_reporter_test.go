package reporter

import (
	"encoding/csv"
	"github.com/tgehrmann/corrana/lib"
	"github.com/tgehrmann/corrana/lib/datatypes"
	"github.com/tgehrmann/corrana/lib/settings"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func testResult(t *testing.T, coords bool) *lib.Result {
	m, err := datatypes.NewLabeledMatrix(
		[]string{"g1", "g2", "g3", "g4"},
		[]string{"c1", "c2", "c3"},
		[]float64{
			4, 0, 2,
			0, 5, 1,
			3, 2, 0,
			1, 1, 6,
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	factorizer, err := lib.NewFactorizer(settings.CaSettings{
		Coords:      coords,
		PrincCoords: lib.PRINC_BOTH,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := factorizer.Factorize(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestCsvReporterWritesFiles(t *testing.T) {
	tempdir, err := os.MkdirTemp("", "corranaTest")
	if err != nil {
		t.Fatalf("failed to create temp dir")
	}
	defer os.RemoveAll(tempdir)
	result := testResult(t, true)
	rep := NewCsvReporter()
	rep.Initialize("run1", tempdir)
	if err := rep.AddResult(result); err != nil {
		t.Fatalf("unexpected error adding a result: %v", err)
	}
	if err := rep.Flush(); err != nil {
		t.Errorf("unexpected error flushing: %v", err)
	}

	file, err := os.Open(filepath.Join(tempdir, "embedding_run1.csv"))
	if err != nil {
		t.Fatalf("missing embedding file: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error reading the embedding: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected a header and one record per column but got %d records", len(records))
	}
	if records[0][0] != "name" || records[0][1] != "Dim1" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][0] != "c1" {
		t.Errorf("unexpected first point name in %v", records[1])
	}
	value, err := strconv.ParseFloat(records[1][1], 64)
	if err != nil {
		t.Errorf("unexpected error parsing a coordinate: %v", err)
	}
	if value != result.StdCoordsCols.At(0, 0) {
		t.Errorf("expected coordinate %v but read %v", result.StdCoordsCols.At(0, 0), value)
	}

	loadings, err := os.Open(filepath.Join(tempdir, "loadings_run1.csv"))
	if err != nil {
		t.Fatalf("missing loadings file: %v", err)
	}
	defer loadings.Close()
	records, err = csv.NewReader(loadings).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error reading the loadings: %v", err)
	}
	if len(records) != 5 {
		t.Errorf("expected a header and one record per row but got %d records", len(records))
	}
	if records[1][0] != "g1" {
		t.Errorf("unexpected first point name in %v", records[1])
	}
}

func TestCsvReporterWritesDimensions(t *testing.T) {
	tempdir, err := os.MkdirTemp("", "corranaTest")
	if err != nil {
		t.Fatalf("failed to create temp dir")
	}
	defer os.RemoveAll(tempdir)
	result := testResult(t, true)
	rep := NewCsvReporter()
	rep.Initialize("run2", tempdir)
	if err := rep.AddResult(result); err != nil {
		t.Fatalf("unexpected error adding a result: %v", err)
	}

	file, err := os.Open(filepath.Join(tempdir, "dimensions_run2.csv"))
	if err != nil {
		t.Fatalf("missing dimensions file: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error reading the dimensions: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected a header and one record per dimension but got %d records", len(records))
	}
	if records[1][0] != "Dim1" || records[3][0] != "Dim3" {
		t.Errorf("unexpected dimension labels in %v", records)
	}
	percentSum := 0.0
	previous := math.Inf(1)
	for _, record := range records[1:] {
		sv, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			t.Errorf("unexpected error parsing a singular value: %v", err)
		}
		if sv > previous {
			t.Errorf("singular values out of order in %v", records)
		}
		previous = sv
		percent, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			t.Errorf("unexpected error parsing a percentage: %v", err)
		}
		percentSum += percent
	}
	if math.Abs(percentSum-100) > 1e-9 {
		t.Errorf("expected the percentages to sum to 100 but got %v", percentSum)
	}
}

func TestCsvReporterSkipsMissingCoordinates(t *testing.T) {
	tempdir, err := os.MkdirTemp("", "corranaTest")
	if err != nil {
		t.Fatalf("failed to create temp dir")
	}
	defer os.RemoveAll(tempdir)
	result := testResult(t, false)
	rep := NewCsvReporter()
	rep.Initialize("run3", tempdir)
	if err := rep.AddResult(result); err != nil {
		t.Fatalf("unexpected error adding a result: %v", err)
	}
	_, err = os.Stat(filepath.Join(tempdir, "embedding_run3.csv"))
	if !os.IsNotExist(err) {
		t.Errorf("expected no embedding file for a result without coordinates")
	}
	_, err = os.Stat(filepath.Join(tempdir, "loadings_run3.csv"))
	if !os.IsNotExist(err) {
		t.Errorf("expected no loadings file for a result without coordinates")
	}
	_, err = os.Stat(filepath.Join(tempdir, "dimensions_run3.csv"))
	if err != nil {
		t.Errorf("expected a dimensions file even without coordinates: %v", err)
	}
}

func TestCsvReporterNeedsInitialize(t *testing.T) {
	rep := NewCsvReporter()
	if err := rep.AddResult(testResult(t, true)); err == nil {
		t.Errorf("expected an error from an uninitialized reporter")
	}
}
