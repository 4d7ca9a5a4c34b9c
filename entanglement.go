package qn

/*
entanglement is one borrow of a register: the lock instance that sibling
qubits share. Every Qubit, QubitPair or Qubits call makes a new one, and two
handles are siblings exactly when they hold the same entanglement.

All borrows of a register serialize on the register's mutex, so handles from
separate borrows of the same register are race-free too; they are just not
considered siblings.
*/
type entanglement[T Amplitude] struct {
	register *Register[T]
}

func (r *Register[T]) entangle() *entanglement[T] {
	return &entanglement[T]{register: r}
}

// measure runs the whole measurement protocol as one critical section.
func (e *entanglement[T]) measure(index uint16) Bit {
	return e.register.measure(index)
}

// apply runs a one-qubit gate over every amplitude pair of qubit index.
func (e *entanglement[T]) apply(index uint16, gate func(lo, hi *T)) {
	r := e.register
	r.locked(func() {
		r.guard(func() {
			for lo, hi := range NewTensorIterMut(r.amp, int(index)).All() {
				gate(lo, hi)
			}
		})
	})
}
