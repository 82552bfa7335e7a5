package control

import (
	"github.com/keystone-rf/p25ctrl/internal/p25/frame"
	"github.com/keystone-rf/p25ctrl/internal/p25/lc"
	"github.com/keystone-rf/p25ctrl/internal/p25const"
)

// nidByteLen is the byte length of the 63-bit BCH-coded NID field,
// rounded up.
const nidByteLen = (63 + 7) / 8

// tsduPayloadOffset is the byte offset, within a fully-framed TSDU
// buffer, of the first payload byte following the sync pattern and NID.
func tsduPayloadOffset() int {
	return p25const.PayloadOffset + p25const.SyncBits/8 + nidByteLen
}

// tsduFrameLen is the length of the single TSBK carried in a framed TSDU
// buffer; the buffer itself is tsduPayloadOffset()+tsduFrameLen bytes.
const tsduFrameLen = 12

func (e *Engine) nac() uint16 {
	return uint16(e.Site.NetworkID & 0x0FFF)
}

// encodeTSDU builds a fully-framed single-TSBK TSDU buffer: sync
// pattern, BCH-coded NID (NAC + DUIDTSDU), the 12-byte TSBK, and
// interleaved busy-bit status symbols.
func (e *Engine) encodeTSDU(t lc.TSBK) []byte {
	length := tsduPayloadOffset() + tsduFrameLen
	buf := make([]byte, length)
	frame.AddSync(buf)
	frame.EncodeNID(buf, e.nac(), p25const.DUIDTSDU)
	raw := t.Encode()
	copy(buf[tsduPayloadOffset():], raw[:])
	frame.AddBusyBits(buf, length, true, false)
	return buf
}

// encodeMBF builds a framed Multi-Block Frame carrying up to three
// TSBKs, padding with status-broadcast fillers so every transmitted MBF
// always contains exactly three TSBKs, per spec.md §4.3's padding rule.
func (e *Engine) encodeMBF(tsbks []lc.TSBK) []byte {
	const perMBF = 3
	padded := make([]lc.TSBK, 0, perMBF)
	padded = append(padded, tsbks...)
	for len(padded) < perMBF {
		padded = append(padded, e.fillerTSBK())
	}
	if len(padded) > perMBF {
		padded = padded[:perMBF]
	}
	for i := range padded {
		padded[i].LastBlock = i == len(padded)-1
	}

	length := tsduPayloadOffset() + tsduFrameLen*perMBF
	buf := make([]byte, length)
	frame.AddSync(buf)
	frame.EncodeNID(buf, e.nac(), p25const.DUIDTSDU)
	off := tsduPayloadOffset()
	for _, t := range padded {
		raw := t.Encode()
		copy(buf[off:], raw[:])
		off += tsduFrameLen
	}
	frame.AddBusyBits(buf, length, true, false)
	return buf
}

func (e *Engine) fillerTSBK() lc.TSBK {
	return lc.TSBK{
		LCO:  lc.OpOSPRFSSStsBcast,
		MFID: lc.MFIDStandard,
		Payload: lc.StatusBroadcast{
			SystemID:  e.Site.SystemID,
			RFSSID:    e.Site.RFSSID,
			SiteID:    e.Site.SiteID,
			ChannelID: e.Site.ChannelID,
			ChannelNo: e.Site.ChannelNo,
		},
	}
}
