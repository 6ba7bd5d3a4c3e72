package dynamics

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMatrix(t *testing.T) {
	Convey("Given small complex matrices", t, func() {
		a := NewMatrix(2, 2, []complex128{1, 2i, 3, 4})
		b := Identity(2)

		Convey("Mul by the identity should change nothing", func() {
			So(a.Mul(b), ShouldResemble, a)
		})

		Convey("Dagger should conjugate and transpose", func() {
			So(a.Dagger().Data, ShouldResemble, []complex128{1, 3, -2i, 4})
		})

		Convey("Kron should interleave blocks", func() {
			k := Diag(1, 2).Kron(b)
			So(k.Rows, ShouldEqual, 4)
			So(k.Data, ShouldResemble, Diag(1, 1, 2, 2).Data)
		})

		Convey("Add and Scale should work entrywise", func() {
			So(a.Add(a).ApproxEqual(a.Scale(2), 0), ShouldBeTrue)
		})

		Convey("IsDiagonal should look at every off-diagonal entry", func() {
			So(Diag(1, 2, 3).IsDiagonal(), ShouldBeTrue)
			So(a.IsDiagonal(), ShouldBeFalse)
		})

		Convey("Mul should refuse mismatched shapes", func() {
			So(func() { a.Mul(NewMatrix(3, 1, nil)) }, ShouldPanic)
		})

		Convey("NewMatrix should copy its data", func() {
			data := []complex128{1, 2, 3, 4}
			m := NewMatrix(2, 2, data)
			data[0] = 9
			So(m.At(0, 0), ShouldEqual, complex128(1))
		})
	})
}
