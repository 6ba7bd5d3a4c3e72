package dynamics

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

/*
groundState returns the lowest-energy eigenvector of the Hermitian matrix h as a
Statevector. A nil h, the case of a model with no static part, gives |0> in a space
of dimension dim.

Diagonal matrices are read off directly. Otherwise h = A + iB is embedded in the real
symmetric matrix [[A, -B], [B, A]], whose spectrum is that of h with every eigenvalue
doubled; the leading eigenvector [x; y] maps back to x + iy.
*/
func groundState(h *Matrix, dim int) (*Statevector, error) {
	if h == nil {
		return BasisState(dim, 0), nil
	}

	n := h.Rows
	if h.IsDiagonal() {
		lowest := 0
		for i := 1; i < n; i++ {
			if real(h.At(i, i)) < real(h.At(lowest, lowest)) {
				lowest = i
			}
		}
		return BasisState(n, lowest), nil
	}

	embedded := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a, b := real(h.At(i, j)), imag(h.At(i, j))
			embedded.SetSym(i, j, a)
			embedded.SetSym(n+i, n+j, a)
			embedded.SetSym(i, n+j, -b)
			embedded.SetSym(j, n+i, b)
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(embedded, true); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition of static hamiltonian failed", ErrConfiguration)
	}

	var vectors mat.Dense
	es.VectorsTo(&vectors)

	amps := make([]complex128, n)
	norm := 0.0
	for i := 0; i < n; i++ {
		amps[i] = complex(vectors.At(i, 0), vectors.At(n+i, 0))
		norm += real(amps[i] * cmplx.Conj(amps[i]))
	}
	norm = math.Sqrt(norm)
	for i := range amps {
		amps[i] /= complex(norm, 0)
	}

	return &Statevector{amplitudes: amps}, nil
}
