// Package voice implements the P25 voice/data keystream generation:
// AES-256 with an LFSR-derived IV run in ECB counter-feedback, ARC4, and
// the 8-byte Message Indicator LFSR evolution. No example repository
// implements P25 voice crypto; this package is built directly against
// spec.md §4.8's bit-exact description.
package voice

// lfsrTapPositions are the bit positions (0 = LSB) tapped by the feedback
// polynomial x^64+x^62+x^46+x^38+x^27+x^15+1, shared by the IV-derivation
// LFSR and the MI-evolution LFSR.
var lfsrTapPositions = [...]uint{63, 61, 45, 37, 26, 14}

// lfsrStep advances a 64-bit LFSR register by one cycle, returning the
// bit shifted out the top (the "overflow" bit used by IV derivation) and
// the new register state.
func lfsrStep(state uint64) (overflow uint64, next uint64) {
	overflow = (state >> 63) & 1
	fb := overflow
	for _, pos := range lfsrTapPositions[1:] {
		fb ^= (state >> pos) & 1
	}
	next = (state << 1) | fb
	return overflow, next
}

// lfsrRun64 runs 64 LFSR cycles from seed, returning the 64-bit value
// assembled MSB-first from the 64 overflow bits and the final register
// state.
func lfsrRun64(seed uint64) (overflowAcc uint64, final uint64) {
	state := seed
	var acc uint64
	for i := 0; i < 64; i++ {
		var bit uint64
		bit, state = lfsrStep(state)
		acc = (acc << 1) | bit
	}
	return acc, state
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = (v << 8) | uint64(b[i])
	}
	return v
}

func uint64ToBytes(v uint64) [8]byte {
	var out [8]byte
	for i := 7; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
