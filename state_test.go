package dynamics

import (
	"math"
	"math/cmplx"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStates(t *testing.T) {
	Convey("Given a statevector", t, func() {
		psi := NewStatevector(complex(1/math.Sqrt2, 0), complex(0, 1/math.Sqrt2))

		Convey("It should report its kind and probabilities", func() {
			So(psi.Kind(), ShouldEqual, StatevectorKind)
			So(psi.Kind().String(), ShouldEqual, "Statevector")
			So(psi.Dim(), ShouldEqual, 2)

			probs := psi.Probabilities()
			So(probs[0], ShouldAlmostEqual, 0.5, 1e-12)
			So(probs[1], ShouldAlmostEqual, 0.5, 1e-12)
		})

		Convey("Amplitudes should be a copy", func() {
			amps := psi.Amplitudes()
			amps[0] = 0
			So(psi.Amplitudes()[0], ShouldEqual, complex(1/math.Sqrt2, 0))
		})

		Convey("It should evolve under a unitary", func() {
			x := RealMatrix([][]float64{{0, 1}, {1, 0}})
			out := BasisState(2, 0).Evolve(x)
			So(out.Amplitudes(), ShouldResemble, []complex128{0, 1})
		})

		Convey("Its generator should apply -iH", func() {
			dy := make([]complex128, 2)
			psi.generate(Diag(1, 2), []complex128{1, 1}, dy)
			So(dy, ShouldResemble, []complex128{-1i, -2i})
		})
	})

	Convey("Given a density matrix of a pure state", t, func() {
		psi := NewStatevector(complex(math.Sqrt(0.25), 0), complex(math.Sqrt(0.75), 0))
		rho := DensityMatrixFromStatevector(psi)

		Convey("It should keep the populations on its diagonal", func() {
			probs := rho.Probabilities()
			So(probs[0], ShouldAlmostEqual, 0.25, 1e-12)
			So(probs[1], ShouldAlmostEqual, 0.75, 1e-12)
			So(rho.Kind(), ShouldEqual, DensityMatrixKind)
		})

		Convey("Evolving it should match evolving the statevector", func() {
			u := rotation(30)
			want := DensityMatrixFromStatevector(psi.Evolve(u))
			So(rho.Evolve(u).Matrix().ApproxEqual(want.Matrix(), 1e-12), ShouldBeTrue)
		})

		Convey("A commuting hamiltonian should generate nothing on a diagonal state", func() {
			diag := NewDensityMatrix(Diag(0.25, 0.75))
			dy := make([]complex128, 4)
			diag.generate(Diag(1, 2), diag.vector(), dy)
			for _, v := range dy {
				So(cmplx.Abs(v), ShouldEqual, 0)
			}
		})
	})

	Convey("Given a superoperator built from a unitary", t, func() {
		u := rotation(40)
		s := SuperOpFromUnitary(u)

		Convey("It should act on column-stacked density matrices", func() {
			rho := DensityMatrixFromStatevector(BasisState(2, 0)).Matrix()
			vec := []complex128{rho.At(0, 0), rho.At(1, 0), rho.At(0, 1), rho.At(1, 1)}
			out := s.Matrix().Mul(NewMatrix(4, 1, vec))

			want := u.Mul(rho).Mul(u.Dagger())
			So(cmplx.Abs(out.At(0, 0)-want.At(0, 0)), ShouldBeLessThan, 1e-12)
			So(cmplx.Abs(out.At(1, 0)-want.At(1, 0)), ShouldBeLessThan, 1e-12)
			So(cmplx.Abs(out.At(2, 0)-want.At(0, 1)), ShouldBeLessThan, 1e-12)
			So(cmplx.Abs(out.At(3, 0)-want.At(1, 1)), ShouldBeLessThan, 1e-12)
		})

		Convey("It should know its Hilbert space dimension", func() {
			So(s.Dim(), ShouldEqual, 2)
			So(NewSuperOp(Identity(9)).Dim(), ShouldEqual, 3)
			So(s.Kind(), ShouldEqual, SuperOpKind)
		})
	})

	Convey("Given operators and superoperators", t, func() {
		Convey("They should not be measurable", func() {
			var state State = NewOperator(Identity(2))
			_, ok := state.(Measurable)
			So(ok, ShouldBeFalse)

			state = NewSuperOp(Identity(4))
			_, ok = state.(Measurable)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestGroundState(t *testing.T) {
	Convey("Given static hamiltonians", t, func() {
		expectation := func(h *Matrix, psi *Statevector) float64 {
			amps := psi.Amplitudes()
			var e complex128
			for i := range amps {
				for j := range amps {
					e += cmplx.Conj(amps[i]) * h.At(i, j) * amps[j]
				}
			}
			return real(e)
		}

		Convey("A diagonal one should give its lowest basis state", func() {
			psi, err := groundState(Diag(3, -1, 2), 3)
			So(err, ShouldBeNil)
			So(psi.Amplitudes(), ShouldResemble, []complex128{0, 1, 0})
		})

		Convey("A real off-diagonal one should give its lowest eigenvector", func() {
			x := RealMatrix([][]float64{{0, 1}, {1, 0}})
			psi, err := groundState(x, 2)
			So(err, ShouldBeNil)
			So(expectation(x, psi), ShouldAlmostEqual, -1, 1e-10)
		})

		Convey("A complex hermitian one should give its lowest eigenvector", func() {
			y := NewMatrix(2, 2, []complex128{0, -1i, 1i, 0})
			psi, err := groundState(y, 2)
			So(err, ShouldBeNil)
			So(expectation(y, psi), ShouldAlmostEqual, -1, 1e-10)

			probs := psi.Probabilities()
			So(probs[0]+probs[1], ShouldAlmostEqual, 1, 1e-10)
		})

		Convey("No hamiltonian should give the zero state", func() {
			psi, err := groundState(nil, 4)
			So(err, ShouldBeNil)
			So(psi.Amplitudes(), ShouldResemble, []complex128{1, 0, 0, 0})
		})
	})
}
