package frame

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keystone-rf/p25ctrl/internal/p25const"
)

func newTestFrame() []byte {
	return make([]byte, 64)
}

func TestAddSyncAndDecodeRoundTrip(t *testing.T) {
	buf := newTestFrame()
	AddSync(buf)
	EncodeNID(buf, 0x293, p25const.DUIDTSDU)

	nac, duid, err := DecodeNID(buf)
	require.NoError(t, err)
	require.Equal(t, uint16(0x293), nac)
	require.Equal(t, p25const.DUIDTSDU, duid)
}

func TestDecodeNIDToleratesFewSyncErrors(t *testing.T) {
	buf := newTestFrame()
	AddSync(buf)
	EncodeNID(buf, 0x1A2, p25const.DUIDLDU1)

	// Flip 3 bits within the sync pattern (within the 4-bit tolerance).
	base := p25const.PayloadOffset * 8
	for _, off := range []int{0, 10, 20} {
		idx := base + off
		setBit(buf, idx, !getBit(buf, idx))
	}

	nac, duid, err := DecodeNID(buf)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1A2), nac)
	require.Equal(t, p25const.DUIDLDU1, duid)
}

func TestDecodeNIDRejectsCorruptSync(t *testing.T) {
	buf := newTestFrame()
	AddSync(buf)
	EncodeNID(buf, 0x1A2, p25const.DUIDLDU1)

	base := p25const.PayloadOffset * 8
	for _, off := range []int{0, 5, 10, 15, 20, 25} {
		idx := base + off
		setBit(buf, idx, !getBit(buf, idx))
	}

	_, _, err := DecodeNID(buf)
	require.ErrorIs(t, err, ErrSyncCorrupt)
}

func TestAddBusyBitsInterleave(t *testing.T) {
	buf := newTestFrame()
	AddBusyBits(buf, len(buf), true, false)

	base := p25const.PayloadOffset * 8
	require.True(t, getBit(buf, base+70))
	require.False(t, getBit(buf, base+71))
}
