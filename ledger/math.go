package ledger

import "math/bits"

// Checked unsigned arithmetic. Every failure maps to ErrArithmeticOverflow so
// callers can surface a single taxonomy error instead of wrapping.

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrArithmeticOverflow
	}
	return diff, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lo, nil
}

var pow10 = [10]uint64{1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000, 1_000_000_000}

// decimalsMultiplier returns 10^decimals for decimals in [0, 9].
func decimalsMultiplier(decimals uint8) uint64 {
	return pow10[decimals]
}
