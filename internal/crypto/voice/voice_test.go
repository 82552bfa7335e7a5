package voice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvolveMITwiceEquals128Cycles(t *testing.T) {
	var mi MI
	for i := range mi {
		mi[i] = byte(i + 1)
	}

	twice := EvolveMI(EvolveMI(mi))

	state := bytesToUint64(mi[:8])
	for i := 0; i < 128; i++ {
		_, state = lfsrStep(state)
	}
	want := mi
	evolved := uint64ToBytes(state)
	copy(want[:8], evolved[:])

	require.Equal(t, want, twice)
}

func TestAES256KeystreamLength(t *testing.T) {
	var key [32]byte
	var mi MI
	ks, err := AES256Keystream(key, mi)
	require.NoError(t, err)
	require.Len(t, ks, AES256KeystreamLength)
}

func TestARC4KeystreamLength(t *testing.T) {
	tek := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	var mi MI
	ks, err := ARC4Keystream(tek, mi)
	require.NoError(t, err)
	require.Len(t, ks, ARC4KeystreamLength)
}

func TestIMBEOffsetLateJump(t *testing.T) {
	require.Equal(t, AESBaseLDU1, IMBEOffset(AESBaseLDU1, 0))
	require.Equal(t, AESBaseLDU1+7*11, IMBEOffset(AESBaseLDU1, 7))
	require.Equal(t, AESBaseLDU1+8*11+2, IMBEOffset(AESBaseLDU1, 8))
}

func TestARC4KeyLeftPad(t *testing.T) {
	var mi MI
	key := ARC4Key([]byte{0xAA}, mi)
	require.Equal(t, byte(0), key[0])
	require.Equal(t, byte(0xAA), key[4])
}
