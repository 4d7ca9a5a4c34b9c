package qn

import (
	"fmt"
	"iter"
	"math/bits"
)

/*
tensorCursor walks the index pairs (lo, hi) that differ only in bit site.
For lowerBits = 2^site the pairs are

	lo = lower + lowerBits*2*upper
	hi = lower + lowerBits*(2*upper+1)

with lower in [0, lowerBits) varying fastest and upper in
[0, len/(2*lowerBits)) varying slowest.
*/
type tensorCursor struct {
	lowerBits int
	upperBits int
	lower     int
	upper     int
}

func newTensorCursor(length, site int) tensorCursor {
	if site < 0 || site >= bits.UintSize-2 || length <= 1<<site {
		panic(fmt.Sprintf("qn: tensor site %d out of range for buffer of %d elements", site, length))
	}

	lowerBits := 1 << site
	return tensorCursor{
		lowerBits: lowerBits,
		upperBits: length / (2 * lowerBits),
	}
}

func (c *tensorCursor) next() (lo, hi int, ok bool) {
	if c.upper >= c.upperBits {
		return 0, 0, false
	}

	lo = c.lower + c.lowerBits*(2*c.upper)
	hi = c.lower + c.lowerBits*(2*c.upper+1)

	c.lower++
	if c.lower >= c.lowerBits {
		c.upper++
		c.lower = 0
	}
	return lo, hi, true
}

func (c *tensorCursor) reset() {
	c.lower, c.upper = 0, 0
}

/*
TensorIter yields the element pairs of buf whose indices differ only in bit
site: lo has the bit clear, hi has it set. A buffer of 2^d elements yields
2^(d-1) pairs. The iterator is consumed by Next and can be rewound with Reset.
*/
type TensorIter[E any] struct {
	buf    []E
	cursor tensorCursor
}

// NewTensorIter panics unless len(buf) > 2^site.
func NewTensorIter[E any](buf []E, site int) *TensorIter[E] {
	return &TensorIter[E]{
		buf:    buf,
		cursor: newTensorCursor(len(buf), site),
	}
}

func (it *TensorIter[E]) Next() (lo, hi E, ok bool) {
	i, j, ok := it.cursor.next()
	if !ok {
		return lo, hi, false
	}
	return it.buf[i], it.buf[j], true
}

// NextIndex advances like Next but yields the positions instead of the elements.
func (it *TensorIter[E]) NextIndex() (lo, hi int, ok bool) {
	return it.cursor.next()
}

func (it *TensorIter[E]) Reset() {
	it.cursor.reset()
}

// All drains the remaining pairs.
func (it *TensorIter[E]) All() iter.Seq2[E, E] {
	return func(yield func(E, E) bool) {
		for {
			lo, hi, ok := it.Next()
			if !ok || !yield(lo, hi) {
				return
			}
		}
	}
}

// Indices drains the remaining pairs as positions into the buffer.
func (it *TensorIter[E]) Indices() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for {
			lo, hi, ok := it.cursor.next()
			if !ok || !yield(lo, hi) {
				return
			}
		}
	}
}

/*
TensorIterMut is the writable form of TensorIter. Both pointers of a pair are
live at once, so a gate can read lo and hi before overwriting either. The two
pointers never alias since hi - lo = 2^site.
*/
type TensorIterMut[E any] struct {
	buf    []E
	cursor tensorCursor
}

// NewTensorIterMut panics unless len(buf) > 2^site.
func NewTensorIterMut[E any](buf []E, site int) *TensorIterMut[E] {
	return &TensorIterMut[E]{
		buf:    buf,
		cursor: newTensorCursor(len(buf), site),
	}
}

func (it *TensorIterMut[E]) Next() (lo, hi *E, ok bool) {
	i, j, ok := it.cursor.next()
	if !ok {
		return nil, nil, false
	}
	return &it.buf[i], &it.buf[j], true
}

func (it *TensorIterMut[E]) Reset() {
	it.cursor.reset()
}

// All drains the remaining pairs.
func (it *TensorIterMut[E]) All() iter.Seq2[*E, *E] {
	return func(yield func(*E, *E) bool) {
		for {
			lo, hi, ok := it.Next()
			if !ok || !yield(lo, hi) {
				return
			}
		}
	}
}
