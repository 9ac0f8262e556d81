package sources

import (
	"github.com/parquet-go/parquet-go"
	"os"
	"path/filepath"
	"testing"
)

func writeCells(t *testing.T, path string, cells []MatrixCell) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0640)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	writer := parquet.NewGenericWriter[MatrixCell](file)
	if len(cells) > 0 {
		if _, err := writer.Write(cells); err != nil {
			t.Fatalf("failed to write cells: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close the writer: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("failed to close %s: %v", path, err)
	}
}

func TestParquetSourceReadsMatrix(t *testing.T) {
	tempdir, err := os.MkdirTemp("", "corranaTest")
	if err != nil {
		t.Fatalf("failed to create temp dir")
	}
	defer os.RemoveAll(tempdir)
	path := filepath.Join(tempdir, "cells.parquet")
	writeCells(t, path, []MatrixCell{
		{Row: "g1", Col: "c1", Value: 4},
		{Row: "g1", Col: "c2", Value: 2},
		{Row: "g2", Col: "c1", Value: 3},
	})
	source := &ParquetSource{Path: path}
	m, err := source.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Rows() != 2 || m.Cols() != 2 {
		t.Fatalf("expected a 2x2 matrix but got %dx%d", m.Rows(), m.Cols())
	}
	if m.RowNames[0] != "g1" || m.RowNames[1] != "g2" {
		t.Errorf("expected rows in first seen order but got %v", m.RowNames)
	}
	if m.ColNames[0] != "c1" || m.ColNames[1] != "c2" {
		t.Errorf("expected columns in first seen order but got %v", m.ColNames)
	}
	if m.Data.At(0, 0) != 4 || m.Data.At(0, 1) != 2 || m.Data.At(1, 0) != 3 {
		t.Errorf("unexpected values %v", m.Data.RawMatrix().Data)
	}
	if m.Data.At(1, 1) != 0 {
		t.Errorf("expected the unmentioned cell to be zero but got %v", m.Data.At(1, 1))
	}
}

func TestParquetSourceRejectsDuplicateCells(t *testing.T) {
	tempdir, err := os.MkdirTemp("", "corranaTest")
	if err != nil {
		t.Fatalf("failed to create temp dir")
	}
	defer os.RemoveAll(tempdir)
	path := filepath.Join(tempdir, "cells.parquet")
	writeCells(t, path, []MatrixCell{
		{Row: "g1", Col: "c1", Value: 4},
		{Row: "g1", Col: "c1", Value: 5},
	})
	source := &ParquetSource{Path: path}
	_, err = source.Read()
	if err == nil {
		t.Errorf("expected an error for a repeated cell")
	}
}

func TestParquetSourceNeedsCells(t *testing.T) {
	tempdir, err := os.MkdirTemp("", "corranaTest")
	if err != nil {
		t.Fatalf("failed to create temp dir")
	}
	defer os.RemoveAll(tempdir)
	path := filepath.Join(tempdir, "cells.parquet")
	writeCells(t, path, nil)
	source := &ParquetSource{Path: path}
	_, err = source.Read()
	if err == nil {
		t.Errorf("expected an error for a file without cells")
	}
}

func TestParquetSourceValidates(t *testing.T) {
	tempdir, err := os.MkdirTemp("", "corranaTest")
	if err != nil {
		t.Fatalf("failed to create temp dir")
	}
	defer os.RemoveAll(tempdir)
	path := filepath.Join(tempdir, "cells.parquet")
	writeCells(t, path, []MatrixCell{
		{Row: "g1", Col: "c1", Value: -4},
	})
	source := &ParquetSource{Path: path}
	_, err = source.Read()
	if err == nil {
		t.Errorf("expected an error for a negative value")
	}
}
