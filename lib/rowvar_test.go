package lib

import (
	"github.com/tgehrmann/corrana/lib/datatypes"
	"github.com/tgehrmann/corrana/lib/residuals"
	"testing"
)

// varianceMatrix has three unremarkable rows and two heavily skewed
// ones, r3 and r5, which dominate the chi-square row variances.
func varianceMatrix() *datatypes.LabeledMatrix {
	m, err := datatypes.NewLabeledMatrix(
		[]string{"r1", "r2", "r3", "r4", "r5"},
		[]string{"c1", "c2", "c3", "c4"},
		[]float64{
			5, 5, 5, 5,
			4, 6, 5, 5,
			20, 0, 0, 0,
			5, 5, 6, 4,
			0, 0, 0, 20,
		})
	if err != nil {
		panic(err)
	}
	return m
}

func TestRowVariances(t *testing.T) {
	res, err := residuals.Compute(varianceMatrix().Data)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	variances := RowVariances(res)
	if len(variances) != 5 {
		t.Fatalf("expected 5 variances but got %d", len(variances))
	}
	for _, skewed := range []int{2, 4} {
		for _, plain := range []int{0, 1, 3} {
			if variances[skewed] <= variances[plain] {
				t.Errorf("expected row %d (%f) to outrank row %d (%f)",
					skewed, variances[skewed], plain, variances[plain])
			}
		}
	}
	// The uniform row matches the expected profile most closely.
	if variances[0] >= variances[1] {
		t.Errorf("expected the uniform row to have the smallest variance, got %v", variances)
	}
}

func TestTopVarianceRows(t *testing.T) {
	chosen, err := TopVarianceRows(varianceMatrix().Data, 2)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(chosen) != 2 {
		t.Fatalf("expected 2 rows but got %v", chosen)
	}
	for _, idx := range chosen {
		if idx != 2 && idx != 4 {
			t.Errorf("expected rows 2 and 4 but got %v", chosen)
		}
	}
	if chosen[0] == chosen[1] {
		t.Errorf("row chosen twice: %v", chosen)
	}
}

func TestTopVarianceRowsKeepsAll(t *testing.T) {
	all, err := TopVarianceRows(varianceMatrix().Data, 0)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("expected all 5 rows but got %v", all)
	}
	// Ranked order still applies, the skewed rows come first.
	for _, idx := range all[:2] {
		if idx != 2 && idx != 4 {
			t.Errorf("expected the skewed rows first but got %v", all)
		}
	}

	clamped, err := TopVarianceRows(varianceMatrix().Data, 17)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(clamped) != 5 {
		t.Errorf("expected the top parameter to be clamped to 5 rows but got %v", clamped)
	}
}
