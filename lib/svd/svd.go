// Package svd provides the singular value decompositions behind
// correspondence analysis. Backends are interchangeable so callers can
// swap the exact decomposition for a randomized sketch on large inputs.
package svd

import (
	"fmt"
	"gonum.org/v1/gonum/mat"
)

// A Factorization is a thin SVD truncated to the requested number of
// dimensions. D holds the singular values in descending order, U has
// one row per input row and V one row per input column.
type Factorization struct {
	U *mat.Dense
	D []float64
	V *mat.Dense
}

// A Backend computes a truncated singular value decomposition.
// dims <= 0 means keep all available dimensions.
type Backend interface {
	Factorize(s *mat.Dense, dims int) (*Factorization, error)
	Name() string
}

// DenseBackend computes an exact thin SVD and truncates afterwards.
// Inspired by sklearn's TruncatedSVD, as well as github.com/james-bowman/nlp.
type DenseBackend struct{}

func (d *DenseBackend) Name() string { return "dense" }

func (d *DenseBackend) Factorize(s *mat.Dense, dims int) (*Factorization, error) {
	r, c := s.Dims()
	var dec mat.SVD
	ok := dec.Factorize(s, mat.SVDThin)
	if !ok {
		return nil, fmt.Errorf("svd failed to converge for a %dx%d matrix", r, c)
	}
	var u, v mat.Dense
	dec.UTo(&u)
	dec.VTo(&v)
	return truncate(&u, dec.Values(nil), &v, dims), nil
}

// truncate cuts a thin factorization down to dims dimensions. The
// returned matrices are copies so factorizations never share data.
func truncate(u *mat.Dense, values []float64, v *mat.Dense, dims int) *Factorization {
	k := len(values)
	if dims > 0 && dims < k {
		k = dims
	}
	ur, _ := u.Dims()
	vr, _ := v.Dims()
	d := make([]float64, k)
	copy(d, values[:k])
	return &Factorization{
		U: mat.DenseCopyOf(u.Slice(0, ur, 0, k)),
		D: d,
		V: mat.DenseCopyOf(v.Slice(0, vr, 0, k)),
	}
}
