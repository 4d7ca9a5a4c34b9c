package qn

/*
Bit is the classical outcome of measuring a qubit.
*/
type Bit uint8

const (
	Zero Bit = 0
	One  Bit = 1
)

func (b Bit) String() string {
	switch b {
	case Zero:
		return "0"
	case One:
		return "1"
	default:
		return "?"
	}
}

// bitOf reads the classical value of qubit k in basis state i.
func bitOf(i int, k uint16) Bit {
	return Bit(i >> k & 1)
}
