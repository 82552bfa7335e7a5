// Package fne implements the peer/FNE network protocol of spec.md §4.7/§6:
// the UDP wire header, the peer-role and master-role login state machines,
// per-protocol ring-buffered receive paths, and the V.24 DFSI mini-handshake.
// Grounded on internal/dmr/servers/hbrp/server.go's command-prefix dispatch
// and packet_handlers.go's RPTL/RPTK/RPTC login chain, re-keyed from DMR's
// 4-byte ASCII command tag to the function/subfunction byte pair of
// spec.md §6.
package fne

import (
	"encoding/binary"
	"errors"

	"github.com/keystone-rf/p25ctrl/internal/p25const"
)

// ErrShortHeader is returned when a buffer is too small to hold the common
// wire header.
var ErrShortHeader = errors.New("fne: frame shorter than header")

// rtpHeaderLen is the fixed length of the embedded RTP header.
const rtpHeaderLen = 12

// HeaderLen is the byte length of the common outbound header: opcode pair
// (2) + stream ID (4) + peer ID (4) + RTP header (12).
const HeaderLen = 2 + 4 + 4 + rtpHeaderLen

// rtpPayloadType is the fixed RTP payload type byte the FNE protocol uses
// for every frame, mirrored into the second byte of the RTP header.
const rtpPayloadType = 0x56

// Header is the decoded form of the common peer-network wire header shared
// by every function/subfunction pair, per spec.md §4.7.
type Header struct {
	Func    p25const.FuncByte
	Sub     byte
	StreamID uint32
	PeerID  uint32
	RTPSeq  uint16
	SSRC    uint32
}

// Encode serializes h and appends payload, producing a fully-framed
// outbound buffer.
func (h Header) Encode(payload []byte) []byte {
	buf := make([]byte, HeaderLen+len(payload))
	buf[0] = byte(h.Func)
	buf[1] = h.Sub
	binary.BigEndian.PutUint32(buf[2:6], h.StreamID)
	binary.BigEndian.PutUint32(buf[6:10], h.PeerID)

	rtp := buf[10:22]
	rtp[0] = 0x80 // version 2, no padding/extension/CSRC
	rtp[1] = rtpPayloadType
	binary.BigEndian.PutUint16(rtp[2:4], h.RTPSeq)
	// Timestamp (rtp[4:8]) is left zero: the control core does not
	// synthesize wall-clock RTP timestamps, per spec.md §4.7's silence
	// on the field.
	binary.BigEndian.PutUint32(rtp[8:12], h.SSRC)

	copy(buf[HeaderLen:], payload)
	return buf
}

// DecodeHeader parses the common header prefix of buf, returning the
// header and the payload slice following it.
func DecodeHeader(buf []byte) (Header, []byte, error) {
	if len(buf) < HeaderLen {
		return Header{}, nil, ErrShortHeader
	}
	h := Header{
		Func:     p25const.FuncByte(buf[0]),
		Sub:      buf[1],
		StreamID: binary.BigEndian.Uint32(buf[2:6]),
		PeerID:   binary.BigEndian.Uint32(buf[6:10]),
		RTPSeq:   binary.BigEndian.Uint16(buf[12:14]),
		SSRC:     binary.BigEndian.Uint32(buf[18:22]),
	}
	return h, buf[HeaderLen:], nil
}
