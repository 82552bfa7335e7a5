// Package frame implements the P25 Phase-1 air-interface framing layer:
// sync pattern placement, the Network ID (NAC+DUID through BCH(63,16,23)),
// and busy/idle status-symbol interleaving. Grounded on spec.md §4.1/§6;
// FEC primitives are delegated to internal/fec.
package frame

import (
	"errors"

	"github.com/keystone-rf/p25ctrl/internal/fec"
	"github.com/keystone-rf/p25ctrl/internal/p25const"
)

// ErrSyncCorrupt is returned by DecodeNID when the sync pattern carries
// more bit errors than the tolerated budget.
var ErrSyncCorrupt = errors.New("frame: sync pattern corrupt")

// setBit sets or clears bit index i (0 = most significant bit of the
// buffer, big-endian bit order) within buf.
func setBit(buf []byte, i int, v bool) {
	byteIdx := i / 8
	bitIdx := uint(7 - i%8)
	if v {
		buf[byteIdx] |= 1 << bitIdx
	} else {
		buf[byteIdx] &^= 1 << bitIdx
	}
}

func getBit(buf []byte, i int) bool {
	byteIdx := i / 8
	bitIdx := uint(7 - i%8)
	return buf[byteIdx]&(1<<bitIdx) != 0
}

// AddSync writes the 48-bit Phase-1 sync pattern at the start of the
// payload area (byte offset p25const.PayloadOffset) of frame.
func AddSync(frameBuf []byte) {
	base := p25const.PayloadOffset * 8
	for i := 0; i < p25const.SyncBits; i++ {
		bit := (p25const.SyncPattern >> uint(p25const.SyncBits-1-i)) & 1
		setBit(frameBuf, base+i, bit == 1)
	}
}

// syncBitErrors counts the Hamming distance between the 48 bits at the
// payload offset of frame and the canonical sync pattern.
func syncBitErrors(frameBuf []byte) int {
	base := p25const.PayloadOffset * 8
	errs := 0
	for i := 0; i < p25const.SyncBits; i++ {
		want := (p25const.SyncPattern>>uint(p25const.SyncBits-1-i))&1 == 1
		if getBit(frameBuf, base+i) != want {
			errs++
		}
	}
	return errs
}

// EncodeNID writes the 16-bit NAC‖DUID value through BCH(63,16,23) into
// the NID field immediately following the sync pattern.
func EncodeNID(frameBuf []byte, nac uint16, duid p25const.DUID) {
	nacDUID := (nac&0x0FFF)<<4 | uint16(duid&0xF)
	codeword := fec.EncodeNID(nacDUID)
	base := p25const.PayloadOffset*8 + p25const.SyncBits
	for i := 0; i < 63; i++ {
		bit := (codeword >> uint(62-i)) & 1
		setBit(frameBuf, base+i, bit == 1)
	}
}

// DecodeNID reads the sync pattern and NID of frame, returning the
// decoded DUID. If the sync pattern carries more than
// p25const.SyncErrorTolerance bit errors, returns ErrSyncCorrupt. If the
// NID fails BCH decode, returns fec.ErrUndecodable; callers must remain
// in their current state on either error, per the framing error
// semantics.
func DecodeNID(frameBuf []byte) (uint16, p25const.DUID, error) {
	if syncBitErrors(frameBuf) > p25const.SyncErrorTolerance {
		return 0, 0, ErrSyncCorrupt
	}
	base := p25const.PayloadOffset*8 + p25const.SyncBits
	var codeword uint64
	for i := 0; i < 63; i++ {
		codeword <<= 1
		if getBit(frameBuf, base+i) {
			codeword |= 1
		}
	}
	nacDUID, _, err := fec.DecodeNID(codeword)
	if err != nil {
		return 0, 0, err
	}
	nac := nacDUID >> 4
	duid := p25const.DUID(nacDUID & 0xF)
	return nac, duid, nil
}

// AddBusyBits writes the 2-bit status symbol (b1,b2) at every 70th bit of
// frame starting at offset 70, with the remaining interleaved positions
// defaulting to "10".
func AddBusyBits(frameBuf []byte, length int, b1, b2 bool) {
	addStatusSymbols(frameBuf, length, p25const.StatusSymbolStride, b1, b2)
}

// AddIdleBits is the TSDU-triple variant, using a 5x stride.
func AddIdleBits(frameBuf []byte, length int, b1, b2 bool) {
	addStatusSymbols(frameBuf, length, p25const.TSDUTripleStatusSymbolStride, b1, b2)
}

func addStatusSymbols(frameBuf []byte, length, stride int, b1, b2 bool) {
	base := p25const.PayloadOffset * 8
	for pos := p25const.StatusSymbolStride; pos+1 < length*8; pos += p25const.StatusSymbolStride {
		setBit(frameBuf, base+pos, true)
		setBit(frameBuf, base+pos+1, false)
	}
	for pos := stride; pos+1 < length*8; pos += stride {
		setBit(frameBuf, base+pos, b1)
		setBit(frameBuf, base+pos+1, b2)
	}
}
