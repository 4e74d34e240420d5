package utils

import (
	"fmt"
	"math"
)

// CheckMultiplyOverflow checks if multiplying two uint64 values would overflow.
func CheckMultiplyOverflow(a, b uint64) error {
	if a == 0 || b == 0 {
		return nil
	}
	if a > math.MaxUint64/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds uint64 max", a, b)
	}
	return nil
}

// ElementCount returns the product of dims, failing on overflow or when the
// result does not fit in an int (the length of a Go slice).
func ElementCount(dims ...uint64) (int, error) {
	n := uint64(1)
	for i, d := range dims {
		if err := CheckMultiplyOverflow(n, d); err != nil {
			return 0, fmt.Errorf("dimension %d: %w", i, err)
		}
		n *= d
	}
	if n > math.MaxInt {
		return 0, fmt.Errorf("element count %d exceeds max slice length", n)
	}
	return int(n), nil
}
