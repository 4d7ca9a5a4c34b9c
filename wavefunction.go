package qn

import (
	"fmt"
	"math"
	"time"

	"github.com/theapemachine/errnie"
)

/*
measure collapses the register onto a classical value of qubit index.

The whole protocol runs under the register mutex:
 1. one pass over the amplitude pairs of the qubit sums the mass p0 of the
    bit-clear branch and p1 of the bit-set branch, both relative to the
    square of the largest amplitude component,
 2. ONE is drawn with probability p1/(p0+p1), clamped into [0, 1],
 3. the losing branch is zeroed and the surviving one divided by that
    component and by the square root of its relative mass.

Every call consumes exactly one draw of the random stream, including calls on
an already collapsed qubit. A zero or non-finite total mass panics with
ErrDegenerate before anything is written.
*/
func (r *Register[T]) measure(index uint16) Bit {
	start := time.Now()
	outcome := Zero

	r.locked(func() {
		scale := maxComponent(r.amp)
		p0, p1 := r.branchWeights(index, scale)
		total := p0 + p1

		if !usableMass(total) {
			r.metrics.recordDegenerate()
			errnie.Info("measure - degenerate state, qubit %d, largest component %v", index, scale)
			panic(fmt.Errorf("%w: qubit %d, largest component %v", ErrDegenerate, index, scale))
		}

		if r.bernoulli(clamp(p1 / total)) {
			outcome = One
		}

		weight := p0
		if outcome == One {
			weight = p1
		}

		r.guard(func() {
			r.collapse(index, outcome, scale, math.Sqrt(weight))
		})
	})

	r.metrics.recordMeasurement(outcome, time.Since(start))
	return outcome
}

// branchWeights sums |a/scale|^2 over the bit-clear and bit-set halves of qubit index.
func (r *Register[T]) branchWeights(index uint16, scale float64) (p0, p1 float64) {
	for lo, hi := range NewTensorIter(r.amp, int(index)).All() {
		p0 += scaledSqrMag(lo, scale)
		p1 += scaledSqrMag(hi, scale)
	}
	return p0, p1
}

/*
collapse zeroes every amplitude whose bit index disagrees with outcome and
divides the rest by scale*norm, one factor at a time. A zero norm leaves the
survivors untouched rather than filling them with NaN.
*/
func (r *Register[T]) collapse(index uint16, outcome Bit, scale, norm float64) {
	s := T(complex(scale, 0))
	n := T(complex(norm, 0))

	for lo, hi := range NewTensorIterMut(r.amp, int(index)).All() {
		keep, drop := lo, hi
		if outcome == One {
			keep, drop = hi, lo
		}

		*drop = 0
		if norm > 0 {
			*keep = *keep / s / n
		}
	}
}

// clamp pulls a probability that rounding pushed past [0, 1] back inside.
func clamp(p float64) float64 {
	return math.Min(1, math.Max(0, p))
}
