package conv

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// ErrOverflow is wrapped by every failed conversion.
var ErrOverflow = errors.New("integer overflow")

// IntToUint64 converts a non-negative int.
func IntToUint64(v int) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d cannot be converted to uint64 (negative)", ErrOverflow, v)
	}
	return uint64(v), nil
}

// Uint64ToInt converts v if it fits in int.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d cannot be converted to int (too large)", ErrOverflow, v)
	}
	return int(v), nil
}

// MulAdd returns a*b+c, failing if the result exceeds math.MaxInt.
func MulAdd(a, b, c uint64) (int, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d*%d", ErrOverflow, a, b)
	}
	sum, carry := bits.Add64(lo, c, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: %d*%d+%d", ErrOverflow, a, b, c)
	}
	return Uint64ToInt(sum)
}
