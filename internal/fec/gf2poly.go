// Package fec implements the forward error correction primitives the
// framing and Link Control layers depend on: Golay(24,12), Hamming(15,11),
// Reed-Solomon over GF(256), a cyclic BCH-shaped block code for the NID,
// half-rate Trellis coding, and CRC-CCITT.
//
// None of the example repositories in the retrieval pack implement P25
// forward error correction, so these are built directly against the
// specification's bit-exact description rather than adapted from a
// teacher file (see DESIGN.md).
package fec

// degree returns the position of the highest set bit of p, or -1 if p==0.
func degree(p uint64) int {
	d := -1
	for i := 0; i < 64; i++ {
		if p&(1<<uint(i)) != 0 {
			d = i
		}
	}
	return d
}

// polyMod computes the GF(2) polynomial remainder of dividend by divisor,
// both represented as bitmasks (bit i = coefficient of x^i). divisor must
// be nonzero.
func polyMod(dividend, divisor uint64) uint64 {
	dDeg := degree(divisor)
	if dDeg < 0 {
		return dividend
	}
	rem := dividend
	for degree(rem) >= dDeg {
		shift := uint(degree(rem) - dDeg)
		rem ^= divisor << shift
	}
	return rem
}

// systematicEncode produces an n-bit systematic codeword from a k-bit
// message using the generator polynomial gen (degree n-k): the message
// occupies the high k bits, and the low (n-k) bits are the remainder of
// the message (shifted up by n-k) divided by gen.
func systematicEncode(message uint64, k, n int, gen uint64) uint64 {
	shifted := message << uint(n-k)
	rem := polyMod(shifted, gen)
	return shifted | rem
}

// popcount64 returns the number of set bits in v.
func popcount64(v uint64) int {
	count := 0
	for v != 0 {
		v &= v - 1
		count++
	}
	return count
}
