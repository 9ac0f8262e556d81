package svd

import (
	"gonum.org/v1/gonum/mat"
	"math"
	"testing"
)

// reconstruct multiplies a factorization back together.
func reconstruct(f *Factorization) *mat.Dense {
	ur, _ := f.U.Dims()
	vr, _ := f.V.Dims()
	ret := mat.NewDense(ur, vr, nil)
	for d := 0; d < len(f.D); d++ {
		for i := 0; i < ur; i++ {
			for j := 0; j < vr; j++ {
				ret.Set(i, j, ret.At(i, j)+f.D[d]*f.U.At(i, d)*f.V.At(j, d))
			}
		}
	}
	return ret
}

func TestDenseBackend(t *testing.T) {
	s := mat.NewDense(2, 2, []float64{0.25, -0.25, -0.25, 0.25})
	backend := &DenseBackend{}
	f, err := backend.Factorize(s, 0)
	if err != nil {
		t.Errorf("unexpected: %v", err)
	}
	if len(f.D) != 2 {
		t.Errorf("expected two singular values but got %d", len(f.D))
	}
	if math.Abs(f.D[0]-0.5) > 1e-12 {
		t.Errorf("expected leading singular value 0.5 but got %f", f.D[0])
	}
	if math.Abs(f.D[1]) > 1e-12 {
		t.Errorf("expected second singular value 0 but got %f", f.D[1])
	}
	if !mat.EqualApprox(reconstruct(f), s, 1e-12) {
		t.Errorf("factorization does not reconstruct the input")
	}
}

func TestDenseBackendTruncates(t *testing.T) {
	s := mat.NewDense(3, 3, []float64{
		2, 0, 1,
		0, 3, 0,
		1, 0, 2,
	})
	backend := &DenseBackend{}
	f, err := backend.Factorize(s, 2)
	if err != nil {
		t.Errorf("unexpected: %v", err)
	}
	if len(f.D) != 2 {
		t.Errorf("expected two singular values after truncation but got %d", len(f.D))
	}
	_, uc := f.U.Dims()
	_, vc := f.V.Dims()
	if uc != 2 || vc != 2 {
		t.Errorf("expected 2 columns in u and v but got %d and %d", uc, vc)
	}
	if f.D[0] < f.D[1] {
		t.Errorf("singular values should be descending: %v", f.D)
	}
}

func TestRandomizedMatchesDense(t *testing.T) {
	// A rank-2 matrix built from two outer products.
	a := []float64{1, 0, 2, -1, 1}
	b := []float64{0, 1, 1, 2, -1}
	s := mat.NewDense(8, 5, nil)
	for i := 0; i < 8; i++ {
		for j := 0; j < 5; j++ {
			s.Set(i, j, float64(i%3)*a[j]+float64(i%2)*b[j])
		}
	}

	dense := &DenseBackend{}
	df, err := dense.Factorize(s, 2)
	if err != nil {
		t.Errorf("unexpected: %v", err)
	}

	randomized := &RandomizedBackend{Oversample: 4, PowerIters: 2, Seed: 7}
	rf, err := randomized.Factorize(s, 2)
	if err != nil {
		t.Errorf("unexpected: %v", err)
	}

	if len(rf.D) != 2 {
		t.Errorf("expected two singular values but got %d", len(rf.D))
	}
	for i := range rf.D {
		if math.Abs(rf.D[i]-df.D[i]) > 1e-8 {
			t.Errorf("singular value %d differs: randomized %f vs dense %f", i, rf.D[i], df.D[i])
		}
	}
	// Signs of the singular vectors can differ, the reconstructions
	// cannot.
	if !mat.EqualApprox(reconstruct(rf), reconstruct(df), 1e-8) {
		t.Errorf("randomized reconstruction differs from the dense one")
	}
}

func TestRandomizedIsDeterministic(t *testing.T) {
	s := mat.NewDense(6, 4, []float64{
		1, 2, 0, 1,
		0, 1, 1, 0,
		2, 0, 1, 1,
		1, 1, 1, 1,
		0, 2, 0, 1,
		1, 0, 2, 0,
	})
	first := &RandomizedBackend{Oversample: 2, PowerIters: 1, Seed: 99}
	second := &RandomizedBackend{Oversample: 2, PowerIters: 1, Seed: 99}
	f1, err := first.Factorize(s, 3)
	if err != nil {
		t.Errorf("unexpected: %v", err)
	}
	f2, err := second.Factorize(s, 3)
	if err != nil {
		t.Errorf("unexpected: %v", err)
	}
	for i := range f1.D {
		if f1.D[i] != f2.D[i] {
			t.Errorf("same seed should give identical singular values, got %v vs %v", f1.D, f2.D)
		}
	}
	if !mat.Equal(f1.U, f2.U) || !mat.Equal(f1.V, f2.V) {
		t.Errorf("same seed should give identical singular vectors")
	}
}
