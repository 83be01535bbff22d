package bytehuff

import (
	mathbits "math/bits"
)

// bytesForBits returns ceil(n / 8).
func bytesForBits(n uint64) uint64 {
	return (n + 7) >> 3
}

// reverse64 reverses the low size bits of x.
func reverse64(size byte, x uint64) uint64 {
	if size == 0 {
		return 0
	}
	return mathbits.Reverse64(x) >> (64 - size)
}

func isPrintable(ch byte) bool {
	return ch >= 32 && ch <= 126
}
