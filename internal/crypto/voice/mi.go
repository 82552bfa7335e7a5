package voice

// MI is a 9-byte Message Indicator: the per-call cryptographic nonce
// carried in LDU2's encryption-sync embedded signaling.
type MI [9]byte

// EvolveMI advances mi by 64 LFSR cycles applied to its first 8 bytes;
// the 9th byte (outside the LFSR register) is carried through unchanged.
// Applying EvolveMI twice is equivalent to one 128-cycle application,
// since the LFSR step is a pure deterministic function of state.
func EvolveMI(mi MI) MI {
	state := bytesToUint64(mi[:8])
	for i := 0; i < 64; i++ {
		_, state = lfsrStep(state)
	}
	next := mi
	evolved := uint64ToBytes(state)
	copy(next[:8], evolved[:])
	return next
}
