package qn

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

/*
MeasureAll measures every group of qubits on its own goroutine, in order
within a group, and returns the outcomes group by group. Groups may hold
handles of the same register; the register mutex serializes their
projections.

ctx is checked before each measurement; a measurement already under way is
never interrupted. A panic inside a measurement (ErrPoisoned, ErrDegenerate)
comes back as the returned error instead of crashing the process.
*/
func MeasureAll[T Amplitude](ctx context.Context, groups ...[]*Qubit[T]) ([][]Bit, error) {
	outcomes := make([][]Bit, len(groups))
	g, gctx := errgroup.WithContext(ctx)

	for i, group := range groups {
		outcomes[i] = make([]Bit, len(group))

		g.Go(func() error {
			for j, qubit := range group {
				if err := gctx.Err(); err != nil {
					return fmt.Errorf("measuring group %d: %w", i, err)
				}

				outcome, err := measureRecovered(qubit)
				if err != nil {
					return fmt.Errorf("measuring group %d, qubit %d: %w", i, qubit.Index(), err)
				}
				outcomes[i][j] = outcome
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func measureRecovered[T Amplitude](qubit *Qubit[T]) (outcome Bit, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("measurement panicked: %v", r)
		}
	}()

	return qubit.Measure(), nil
}
