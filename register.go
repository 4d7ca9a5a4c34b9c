package qn

import (
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/theapemachine/errnie"
)

// MaxQubits bounds the register width. 2^30 complex128 amplitudes take 16GiB.
const MaxQubits = 30

/*
Amplitude is the element type of a state vector. complex64 gives a
single-precision register, complex128 a double-precision one.
*/
type Amplitude interface {
	~complex64 | ~complex128
}

/*
Register is a quantum register of n qubits stored as 2^n complex amplitudes.
Bit k of an amplitude's index is the classical value of qubit k, so index 0
is |0...0> and index 2^n-1 is |1...1>.

The amplitudes and the random stream are guarded by one mutex. Qubit handles
reach the register only through that mutex, so handles may be measured from
any number of goroutines.

A panic that escapes while amplitudes are being written poisons the register:
every later operation other than NumQubits, Len and Poisoned panics with
ErrPoisoned.
*/
type Register[T Amplitude] struct {
	mu        sync.Mutex
	numQubits uint16
	amp       []T
	rng       *rand.Rand
	metrics   *Metrics
	poisoned  bool
}

/*
NewRegister allocates a register of numQubits qubits in the |0...0> state and
seeds its random stream with seed. It panics when numQubits is zero or larger
than MaxQubits.
*/
func NewRegister[T Amplitude](numQubits uint16, seed uint64, opts ...Option) *Register[T] {
	if numQubits == 0 || numQubits > MaxQubits {
		panic(fmt.Sprintf("qn: register width %d outside [1, %d]", numQubits, MaxQubits))
	}

	config := NewConfig(seed)
	for _, opt := range opts {
		opt(config)
	}

	amp := make([]T, 1<<numQubits)
	amp[0] = 1

	errnie.Info(
		"NewRegister - qubits %d, amplitudes %d, seed %d",
		numQubits,
		len(amp),
		seed,
	)

	return &Register[T]{
		numQubits: numQubits,
		amp:       amp,
		rng:       rand.New(config.source()),
		metrics:   config.Metrics,
	}
}

func (r *Register[T]) NumQubits() uint16 {
	return r.numQubits
}

// Len is the number of amplitudes, 2^NumQubits.
func (r *Register[T]) Len() int {
	return len(r.amp)
}

func (r *Register[T]) Poisoned() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.poisoned
}

// Amplitudes returns a copy of the state vector.
func (r *Register[T]) Amplitudes() []T {
	var out []T
	r.locked(func() {
		out = slices.Clone(r.amp)
	})
	return out
}

/*
Amplitude reads the amplitude of basis state i. It panics with ErrIndex when
i is outside [0, Len()).
*/
func (r *Register[T]) Amplitude(i int) T {
	r.checkIndex(i)

	var a T
	r.locked(func() {
		a = r.amp[i]
	})
	return a
}

/*
SetAmplitudes overwrites the state vector with amps. The register does not
normalize what it is given; Normalize does that on request.
*/
func (r *Register[T]) SetAmplitudes(amps []T) error {
	if len(amps) != len(r.amp) {
		return fmt.Errorf("%w: got %d, want %d", ErrLength, len(amps), len(r.amp))
	}

	r.Update(func(amp []T) {
		copy(amp, amps)
	})
	return nil
}

/*
SetAmplitude overwrites the amplitude of basis state i. An i outside
[0, Len()) panics with ErrIndex before the register is touched, so the
register stays usable.
*/
func (r *Register[T]) SetAmplitude(i int, a T) {
	r.checkIndex(i)

	r.Update(func(amp []T) {
		amp[i] = a
	})
}

/*
Update hands fn the live state vector with the register locked. fn must not
call back into the register or any of its qubits.
*/
func (r *Register[T]) Update(fn func(amp []T)) {
	r.locked(func() {
		r.guard(func() {
			fn(r.amp)
		})
	})
}

// Reset returns the register to |0...0>.
func (r *Register[T]) Reset() {
	r.Update(func(amp []T) {
		clear(amp)
		amp[0] = 1
	})
}

/*
Norm is the total probability mass, the sum of |a|^2 over all amplitudes. The
result can overflow or underflow for extreme amplitudes even where Normalize
and measurement still work.
*/
func (r *Register[T]) Norm() float64 {
	var total float64
	r.locked(func() {
		total = r.norm()
	})
	return total
}

/*
Normalize rescales the state vector to unit norm. Any state with a finite,
non-zero amplitude can be normalized, however large or small its entries.
*/
func (r *Register[T]) Normalize() error {
	var err error
	r.locked(func() {
		scale := maxComponent(r.amp)
		total := r.scaledNorm(scale)
		if !usableMass(total) {
			err = fmt.Errorf("%w: largest component %v", ErrDegenerate, scale)
			return
		}

		s := T(complex(scale, 0))
		n := T(complex(math.Sqrt(total), 0))
		r.guard(func() {
			for i := range r.amp {
				r.amp[i] = r.amp[i] / s / n
			}
		})
	})
	return err
}

/*
Probability reports P(ONE) for qubit index without collapsing anything: the
summed mass of the basis states with that bit set. ok is false for an index
outside the register.
*/
func (r *Register[T]) Probability(index uint16) (p float64, ok bool) {
	if index >= r.numQubits {
		return 0, false
	}

	r.locked(func() {
		scale := maxComponent(r.amp)
		if scale == 0 {
			return
		}
		_, p = r.branchWeights(index, scale)
		p *= scale * scale
	})
	return p, true
}

/*
Bernoulli draws true with probability p from the register's random stream.
p outside [0, 1] (or NaN) yields ErrProbability and consumes nothing.
*/
func (r *Register[T]) Bernoulli(p float64) (bool, error) {
	if !(p >= 0 && p <= 1) {
		return false, fmt.Errorf("%w: %v", ErrProbability, p)
	}

	var outcome bool
	r.locked(func() {
		outcome = r.bernoulli(p)
	})
	return outcome, nil
}

/*
Qubit returns a handle on qubit index with a borrow of its own. ok is false
when index is outside the register.
*/
func (r *Register[T]) Qubit(index uint16) (qubit *Qubit[T], ok bool) {
	if index >= r.numQubits {
		return nil, false
	}
	return newQubit(r.entangle(), index), true
}

/*
QubitPair returns two sibling handles sharing one borrow. ok is false when
either index is outside the register or the indices are equal.
*/
func (r *Register[T]) QubitPair(index1, index2 uint16) (q1, q2 *Qubit[T], ok bool) {
	if index1 >= r.numQubits || index2 >= r.numQubits || index1 == index2 {
		return nil, nil, false
	}

	link := r.entangle()
	return newQubit(link, index1), newQubit(link, index2), true
}

/*
Qubits yields one handle per qubit, in index order, all siblings of one
borrow. Each range over the sequence makes a fresh borrow.
*/
func (r *Register[T]) Qubits() iter.Seq[*Qubit[T]] {
	return func(yield func(*Qubit[T]) bool) {
		link := r.entangle()
		for index := uint16(0); index < r.numQubits; index++ {
			if !yield(newQubit(link, index)) {
				return
			}
		}
	}
}

// locked runs fn holding the register mutex, refusing a poisoned register.
func (r *Register[T]) locked(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.poisoned {
		panic(ErrPoisoned)
	}
	fn()
}

// guard poisons the register if fn panics. Callers hold the mutex.
func (r *Register[T]) guard(fn func()) {
	clean := false
	defer func() {
		if !clean {
			r.poisoned = true
			errnie.Info("Register - poisoned, %d qubits", r.numQubits)
		}
	}()

	fn()
	clean = true
}

func (r *Register[T]) bernoulli(p float64) bool {
	return r.rng.Float64() < p
}

func (r *Register[T]) checkIndex(i int) {
	if i < 0 || i >= len(r.amp) {
		panic(fmt.Errorf("%w: %d not in [0, %d)", ErrIndex, i, len(r.amp)))
	}
}

func (r *Register[T]) norm() float64 {
	scale := maxComponent(r.amp)
	if scale == 0 {
		return 0
	}
	return scale * scale * r.scaledNorm(scale)
}

// scaledNorm is the norm divided by scale^2. NaN when scale is 0, NaN or Inf.
func (r *Register[T]) scaledNorm(scale float64) float64 {
	var total float64
	for _, a := range r.amp {
		total += scaledSqrMag(a, scale)
	}
	return total
}

/*
maxComponent is the largest |re| or |im| in amp. Squares are taken relative to
it, which keeps them clear of overflow and underflow. NaN anywhere yields NaN.
*/
func maxComponent[T Amplitude](amp []T) float64 {
	var scale float64
	for _, a := range amp {
		c := complex128(a)
		scale = math.Max(scale, math.Max(math.Abs(real(c)), math.Abs(imag(c))))
	}
	return scale
}

func scaledSqrMag[T Amplitude](a T, scale float64) float64 {
	c := complex128(a)
	re, im := real(c)/scale, imag(c)/scale
	return re*re + im*im
}

// usableMass rejects the zero, NaN and infinite totals of a degenerate state.
func usableMass(total float64) bool {
	return total != 0 && !math.IsNaN(total) && !math.IsInf(total, 0)
}
