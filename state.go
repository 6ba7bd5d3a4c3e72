package dynamics

import (
	"math"
	"math/cmplx"
)

// StateKind names the concrete representation behind a State.
type StateKind int

const (
	StatevectorKind StateKind = iota
	DensityMatrixKind
	OperatorKind
	SuperOpKind
)

func (k StateKind) String() string {
	switch k {
	case StatevectorKind:
		return "Statevector"
	case DensityMatrixKind:
		return "DensityMatrix"
	case OperatorKind:
		return "Operator"
	case SuperOpKind:
		return "SuperOp"
	default:
		return "unknown"
	}
}

/*
State is anything the evolution driver can integrate: a statevector, a density
matrix, a unitary, or a superoperator. The set is closed; each kind knows how a
Hamiltonian acts on its flattened data and how to rebuild itself from it.
*/
type State interface {
	Kind() StateKind
	// Dim is the dimension of the underlying Hilbert space.
	Dim() int

	vector() []complex128
	fromVector(y []complex128) State
	generate(h *Matrix, y, dy []complex128)
}

// Measurable states expose computational-basis probabilities.
type Measurable interface {
	State
	Probabilities() []float64
}

// Statevector is a pure state.
type Statevector struct {
	amplitudes []complex128
}

func NewStatevector(amplitudes ...complex128) *Statevector {
	amps := make([]complex128, len(amplitudes))
	copy(amps, amplitudes)
	return &Statevector{amplitudes: amps}
}

// BasisState is |index> in a dim-dimensional space.
func BasisState(dim, index int) *Statevector {
	amps := make([]complex128, dim)
	amps[index] = 1
	return &Statevector{amplitudes: amps}
}

func (s *Statevector) Kind() StateKind { return StatevectorKind }
func (s *Statevector) Dim() int        { return len(s.amplitudes) }

func (s *Statevector) Amplitudes() []complex128 {
	return s.vector()
}

func (s *Statevector) Probabilities() []float64 {
	probs := make([]float64, len(s.amplitudes))
	for i, a := range s.amplitudes {
		probs[i] = real(a * cmplx.Conj(a))
	}
	return probs
}

// Evolve applies the unitary u.
func (s *Statevector) Evolve(u *Matrix) *Statevector {
	out := make([]complex128, len(s.amplitudes))
	for i := range out {
		for j, a := range s.amplitudes {
			out[i] += u.At(i, j) * a
		}
	}
	return &Statevector{amplitudes: out}
}

func (s *Statevector) vector() []complex128 {
	y := make([]complex128, len(s.amplitudes))
	copy(y, s.amplitudes)
	return y
}

func (s *Statevector) fromVector(y []complex128) State {
	return &Statevector{amplitudes: y}
}

func (s *Statevector) generate(h *Matrix, y, dy []complex128) {
	d := len(y)
	for i := 0; i < d; i++ {
		var sum complex128
		for j := 0; j < d; j++ {
			sum += h.Data[i*d+j] * y[j]
		}
		dy[i] = -1i * sum
	}
}

// DensityMatrix is a mixed state.
type DensityMatrix struct {
	rho *Matrix
}

func NewDensityMatrix(rho *Matrix) *DensityMatrix {
	return &DensityMatrix{rho: rho.Clone()}
}

// DensityMatrixFromStatevector is |psi><psi|.
func DensityMatrixFromStatevector(psi *Statevector) *DensityMatrix {
	d := psi.Dim()
	rho := NewMatrix(d, d, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			rho.Set(i, j, psi.amplitudes[i]*cmplx.Conj(psi.amplitudes[j]))
		}
	}
	return &DensityMatrix{rho: rho}
}

func (dm *DensityMatrix) Kind() StateKind { return DensityMatrixKind }
func (dm *DensityMatrix) Dim() int        { return dm.rho.Rows }
func (dm *DensityMatrix) Matrix() *Matrix { return dm.rho.Clone() }

// Probabilities reads the diagonal, clipping round-off below zero.
func (dm *DensityMatrix) Probabilities() []float64 {
	probs := make([]float64, dm.rho.Rows)
	for i := range probs {
		probs[i] = math.Max(0, real(dm.rho.At(i, i)))
	}
	return probs
}

// Evolve applies the unitary u as u rho u†.
func (dm *DensityMatrix) Evolve(u *Matrix) *DensityMatrix {
	return &DensityMatrix{rho: u.Mul(dm.rho).Mul(u.Dagger())}
}

func (dm *DensityMatrix) vector() []complex128 {
	return dm.rho.Clone().Data
}

func (dm *DensityMatrix) fromVector(y []complex128) State {
	d := dm.rho.Rows
	return &DensityMatrix{rho: &Matrix{Rows: d, Cols: d, Data: y}}
}

func (dm *DensityMatrix) generate(h *Matrix, y, dy []complex128) {
	d := dm.rho.Rows
	for a := 0; a < d; a++ {
		for b := 0; b < d; b++ {
			var sum complex128
			for k := 0; k < d; k++ {
				sum += h.Data[a*d+k]*y[k*d+b] - y[a*d+k]*h.Data[k*d+b]
			}
			dy[a*d+b] = -1i * sum
		}
	}
}

// Operator is a unitary propagator.
type Operator struct {
	u *Matrix
}

func NewOperator(u *Matrix) *Operator {
	return &Operator{u: u.Clone()}
}

func (op *Operator) Kind() StateKind { return OperatorKind }
func (op *Operator) Dim() int        { return op.u.Rows }
func (op *Operator) Matrix() *Matrix { return op.u.Clone() }

func (op *Operator) vector() []complex128 {
	return op.u.Clone().Data
}

func (op *Operator) fromVector(y []complex128) State {
	return &Operator{u: &Matrix{Rows: op.u.Rows, Cols: op.u.Cols, Data: y}}
}

func (op *Operator) generate(h *Matrix, y, dy []complex128) {
	d, cols := op.u.Rows, op.u.Cols
	for i := 0; i < d; i++ {
		for j := 0; j < cols; j++ {
			var sum complex128
			for k := 0; k < d; k++ {
				sum += h.Data[i*d+k] * y[k*cols+j]
			}
			dy[i*cols+j] = -1i * sum
		}
	}
}

/*
SuperOp is a linear map on density matrices acting on their column-stacked
vectorisation: vec(rho)[a + b*d] = rho[a][b].
*/
type SuperOp struct {
	s *Matrix
	d int
}

func NewSuperOp(s *Matrix) *SuperOp {
	return &SuperOp{s: s.Clone(), d: int(math.Round(math.Sqrt(float64(s.Rows))))}
}

// SuperOpFromUnitary is the channel rho -> u rho u†, i.e. conj(u) ⊗ u.
func SuperOpFromUnitary(u *Matrix) *SuperOp {
	return &SuperOp{s: u.Conj().Kron(u), d: u.Rows}
}

func (so *SuperOp) Kind() StateKind { return SuperOpKind }
func (so *SuperOp) Dim() int        { return so.d }
func (so *SuperOp) Matrix() *Matrix { return so.s.Clone() }

func (so *SuperOp) vector() []complex128 {
	return so.s.Clone().Data
}

func (so *SuperOp) fromVector(y []complex128) State {
	return &SuperOp{s: &Matrix{Rows: so.s.Rows, Cols: so.s.Cols, Data: y}, d: so.d}
}

func (so *SuperOp) generate(h *Matrix, y, dy []complex128) {
	d, n := so.d, so.s.Cols
	for c := 0; c < n; c++ {
		for a := 0; a < d; a++ {
			for b := 0; b < d; b++ {
				var sum complex128
				for k := 0; k < d; k++ {
					sum += h.Data[a*d+k]*y[(k+b*d)*n+c] - y[(a+k*d)*n+c]*h.Data[k*d+b]
				}
				dy[(a+b*d)*n+c] = -1i * sum
			}
		}
	}
}
