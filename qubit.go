package qn

import "math"

/*
Qubit is a handle on one qubit of a Register. It holds the qubit's index and
the borrow it was created through; it never owns amplitudes. Handles are
immutable and may be shared between goroutines.
*/
type Qubit[T Amplitude] struct {
	link  *entanglement[T]
	index uint16
}

func newQubit[T Amplitude](link *entanglement[T], index uint16) *Qubit[T] {
	return &Qubit[T]{
		link:  link,
		index: index,
	}
}

// Index is the bit position this handle addresses.
func (q *Qubit[T]) Index() uint16 {
	return q.index
}

/*
Measure collapses the register onto a classical value of this qubit and
returns it. It blocks while any other handle of the register is measuring.
Once it has returned b, measuring the same qubit again returns b until the
amplitudes are overwritten.
*/
func (q *Qubit[T]) Measure() Bit {
	return q.link.measure(q.index)
}

/*
IsFromSameRegister reports whether other shares this handle's borrow. Handles
of two registers with equal contents, or of two separate borrows, are not.
*/
func (q *Qubit[T]) IsFromSameRegister(other *Qubit[T]) bool {
	return other != nil && q.link == other.link
}

// X flips the qubit, swapping the amplitudes of every |..0..>, |..1..> pair.
func (q *Qubit[T]) X() {
	q.link.apply(q.index, func(lo, hi *T) {
		*lo, *hi = *hi, *lo
	})
}

// Hadamard applies H = 1/√2 [[1, 1], [1, -1]] to the qubit.
func (q *Qubit[T]) Hadamard() {
	h := T(complex(1/math.Sqrt2, 0))
	q.link.apply(q.index, func(lo, hi *T) {
		a, b := *lo, *hi
		*lo = (a + b) * h
		*hi = (a - b) * h
	})
}
