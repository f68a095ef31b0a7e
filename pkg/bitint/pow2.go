/*
Package bitint provides the power-of-two arithmetic the transform and the
configuration layer rely on. Everything here is O(1), allocation free and
safe to call from the audio path.

	windowOK := bitint.IsPowerOfTwo(windowSize)
	depth := bitint.Log2(windowSize) // recursion depth of a radix-2 transform
*/
package bitint

import "math/bits"

// IsPowerOfTwo checks if n is a power of 2 using bit manipulation. A power
// of two has exactly one bit set, so clearing the lowest set bit with
// n&(n-1) leaves zero only for powers of two.
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 returns the exponent of a power of two, e.g. Log2(1024) = 10.
// For other positive values it returns floor(log2(n)); for n <= 0 it
// returns -1.
func Log2(n int) int {
	if n <= 0 {
		return -1
	}
	return bits.Len(uint(n)) - 1
}

// NextPowerOfTwo returns the next power of 2 >= size. The subtraction of one
// keeps exact powers of two unchanged: for 8, bits.Len(7) = 3 and 1<<3 = 8.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}
