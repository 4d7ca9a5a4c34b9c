package qn

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIsFromSameRegister(t *testing.T) {
	Convey("Given two registers", t, func() {
		reg1 := NewRegister[complex128](2, 1)
		reg2 := NewRegister[complex128](2, 1)

		Convey("Then qubits of one pair should be siblings", func() {
			q1, q2, _ := reg1.QubitPair(0, 1)
			So(q1.IsFromSameRegister(q2), ShouldBeTrue)
			So(q2.IsFromSameRegister(q1), ShouldBeTrue)
			So(q1.IsFromSameRegister(q1), ShouldBeTrue)
		})

		Convey("Then qubits of different registers should not be", func() {
			q1, _ := reg1.Qubit(0)
			q2, _ := reg2.Qubit(0)
			So(q1.IsFromSameRegister(q2), ShouldBeFalse)
			So(q2.IsFromSameRegister(q1), ShouldBeFalse)
		})

		Convey("Then separate borrows of one register should not be", func() {
			q1, _ := reg1.Qubit(0)
			q2, _ := reg1.Qubit(1)
			So(q1.IsFromSameRegister(q2), ShouldBeFalse)

			a1, _, _ := reg1.QubitPair(0, 1)
			b1, _, _ := reg1.QubitPair(0, 1)
			So(a1.IsFromSameRegister(b1), ShouldBeFalse)
		})

		Convey("Then a nil handle should never be a sibling", func() {
			q1, _ := reg1.Qubit(0)
			So(q1.IsFromSameRegister(nil), ShouldBeFalse)
		})

		Convey("Then siblings should stay siblings across goroutines", func() {
			q1, q2, _ := reg1.QubitPair(0, 1)
			results := make([]bool, 8)

			var wg sync.WaitGroup
			for i := range results {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if i%2 == 0 {
						results[i] = q1.IsFromSameRegister(q2)
					} else {
						results[i] = q2.IsFromSameRegister(q1)
					}
				}()
			}
			wg.Wait()

			for _, same := range results {
				So(same, ShouldBeTrue)
			}
		})
	})
}

func TestQubitIndex(t *testing.T) {
	Convey("Given a three qubit register", t, func() {
		reg := NewRegister[complex64](3, 1)

		Convey("Then every handle should report the index it was made for", func() {
			for i := uint16(0); i < 3; i++ {
				qubit, ok := reg.Qubit(i)
				So(ok, ShouldBeTrue)
				So(qubit.Index(), ShouldEqual, i)
			}
		})
	})
}

func TestGates(t *testing.T) {
	Convey("Given a two qubit register in |00>", t, func() {
		reg := NewRegister[complex128](2, 1)
		q0, q1, _ := reg.QubitPair(0, 1)

		Convey("When X is applied to qubit 1", func() {
			q1.X()

			Convey("Then the register should hold |10>", func() {
				So(reg.Amplitudes(), ShouldResemble, []complex128{0, 0, 1, 0})
				So(q1.Measure(), ShouldEqual, One)
				So(q0.Measure(), ShouldEqual, Zero)
			})

			Convey("Then X again should undo it", func() {
				q1.X()
				So(reg.Amplitudes(), ShouldResemble, []complex128{1, 0, 0, 0})
			})
		})

		Convey("When Hadamard is applied to qubit 0", func() {
			q0.Hadamard()

			Convey("Then both branches of qubit 0 should carry half the mass", func() {
				p, _ := reg.Probability(0)
				So(p, ShouldAlmostEqual, 0.5, 1e-12)
				So(real(reg.Amplitude(0)), ShouldAlmostEqual, invSqrt2, 1e-12)
				So(real(reg.Amplitude(1)), ShouldAlmostEqual, invSqrt2, 1e-12)
				So(reg.Amplitude(2), ShouldEqual, complex128(0))
				So(reg.Norm(), ShouldAlmostEqual, 1, 1e-12)
			})

			Convey("Then a second Hadamard should restore |00>", func() {
				q0.Hadamard()
				amps := reg.Amplitudes()
				So(real(amps[0]), ShouldAlmostEqual, 1, 1e-12)
				for _, a := range amps[1:] {
					So(real(a), ShouldAlmostEqual, 0, 1e-12)
					So(imag(a), ShouldAlmostEqual, 0, 1e-12)
				}
			})
		})

		Convey("When a Bell pair is prepared with gates", func() {
			q0.Hadamard()
			// CNOT(0 -> 1) on |00> + |01> swaps the |01> and |11> amplitudes.
			reg.Update(func(amp []complex128) {
				amp[1], amp[3] = amp[3], amp[1]
			})

			Convey("Then measuring both qubits should always agree", func() {
				So(q1.Measure(), ShouldEqual, q0.Measure())
			})
		})
	})
}
