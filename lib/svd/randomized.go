package svd

import (
	"fmt"
	"gonum.org/v1/gonum/mat"
	"math/rand"
)

// RandomizedBackend approximates the thin SVD with the gaussian sketch
// from Halko, Martinsson and Tropp. When the sketch is at least as wide
// as the true rank, the result matches the dense factorization up to
// the sign of the singular vectors.
type RandomizedBackend struct {
	// Extra sketch columns beyond the requested dimensions.
	Oversample int

	// Power iterations sharpen the sketch when singular values
	// decay slowly.
	PowerIters int

	// The rng seed. Factorizations with the same seed are identical.
	Seed int64
}

func (b *RandomizedBackend) Name() string { return "randomized" }

func (b *RandomizedBackend) Factorize(s *mat.Dense, dims int) (*Factorization, error) {
	rows, cols := s.Dims()
	smaller := rows
	if cols < smaller {
		smaller = cols
	}
	rank := dims
	if rank <= 0 || rank > smaller {
		rank = smaller
	}
	oversample := b.Oversample
	if oversample <= 0 {
		oversample = 10
	}
	sketch := rank + oversample
	if sketch > smaller {
		sketch = smaller
	}

	rng := rand.New(rand.NewSource(b.Seed))
	omega := mat.NewDense(cols, sketch, nil)
	for i := 0; i < cols; i++ {
		for j := 0; j < sketch; j++ {
			omega.Set(i, j, rng.NormFloat64())
		}
	}

	// Range finding: project the input onto the sketch and
	// orthonormalize.
	var y mat.Dense
	y.Mul(s, omega)
	q, err := orthonormalize(&y)
	if err != nil {
		return nil, err
	}

	for iter := 0; iter < b.PowerIters; iter++ {
		var z mat.Dense
		z.Mul(s.T(), q)
		zq, err := orthonormalize(&z)
		if err != nil {
			return nil, err
		}
		var yi mat.Dense
		yi.Mul(s, zq)
		q, err = orthonormalize(&yi)
		if err != nil {
			return nil, err
		}
	}

	// The small matrix b = q^T s has only sketch rows, so its dense
	// SVD is cheap even when s is large.
	var small mat.Dense
	small.Mul(q.T(), s)

	var dec mat.SVD
	ok := dec.Factorize(&small, mat.SVDThin)
	if !ok {
		return nil, fmt.Errorf("svd failed to converge for the %dx%d sketch", sketch, cols)
	}
	var ub, v mat.Dense
	dec.UTo(&ub)
	dec.VTo(&v)

	var u mat.Dense
	u.Mul(q, &ub)
	return truncate(&u, dec.Values(nil), &v, rank), nil
}

// orthonormalize returns an orthonormal basis for the columns of y.
func orthonormalize(y *mat.Dense) (*mat.Dense, error) {
	r, c := y.Dims()
	if r < c {
		return nil, fmt.Errorf("cannot orthonormalize a %dx%d matrix, need at least as many rows as columns", r, c)
	}
	var qr mat.QR
	qr.Factorize(y)
	var q mat.Dense
	qr.QTo(&q)
	if c < r {
		return mat.DenseCopyOf(q.Slice(0, r, 0, c)), nil
	}
	return &q, nil
}
