package qn

import "errors"

var (
	// ErrProbability is returned by Bernoulli for p outside [0, 1].
	ErrProbability = errors.New("qn: probability outside [0, 1]")

	// ErrLength is returned when an injected state does not have 2^n amplitudes.
	ErrLength = errors.New("qn: amplitude count does not match register")

	// ErrIndex is raised for an amplitude index outside [0, 2^n).
	ErrIndex = errors.New("qn: amplitude index outside register")

	// ErrDegenerate signals a state vector with zero or non-finite total
	// probability mass. Nothing is written when it is raised.
	ErrDegenerate = errors.New("qn: degenerate state vector")

	// ErrPoisoned is raised by every operation on a register whose state
	// vector was left half-written by a panic.
	ErrPoisoned = errors.New("qn: register poisoned by an interrupted mutation")
)
