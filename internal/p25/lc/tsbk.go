package lc

import (
	"errors"

	"github.com/keystone-rf/p25ctrl/internal/fec"
)

// ErrCRC is returned when a decoded TSBK's CRC-CCITT does not match.
var ErrCRC = errors.New("lc: CRC mismatch")

// ErrUnknownOpcode is returned when no codec is registered for a
// decoded LCO+MFID pair — the factory falls back to GenericPayload
// instead in practice, so this is reserved for malformed headers.
var ErrUnknownOpcode = errors.New("lc: unknown opcode")

// Payload is the marker interface implemented by every typed TSBK
// variant's payload.
type Payload interface {
	isPayload()
}

// GenericPayload is the fallback payload for any opcode without a typed
// codec registered: it preserves the raw 8 payload bytes exactly, so the
// encode-then-decode round-trip invariant holds even for opcodes this
// rewrite has not special-cased.
type GenericPayload struct {
	Raw [8]byte
}

func (GenericPayload) isPayload() {}

// TSBK is the decoded representation of a single trunking signaling
// block: the common header plus a typed (or generic) payload.
type TSBK struct {
	LCO       Opcode
	MFID      MFID
	LastBlock bool
	Payload   Payload
}

type codec struct {
	decode func([8]byte) (Payload, error)
	encode func(Payload) [8]byte
}

var registry = map[OpcodeKey]codec{}

func register(key OpcodeKey, c codec) {
	registry[key] = c
}

// Encode serializes a TSBK into its 12-byte wire form: header byte
// (LastBlock|LCO), MFID byte, 8 payload bytes, and a 2-byte CRC-CCITT
// over the preceding 10 bytes.
func (t TSBK) Encode() [12]byte {
	var buf [12]byte
	buf[0] = byte(t.LCO) & 0x3F
	if t.LastBlock {
		buf[0] |= 0x80
	}
	buf[1] = byte(t.MFID)

	key := OpcodeKey{LCO: t.LCO, MFID: t.MFID}
	var payloadBytes [8]byte
	if c, ok := registry[key]; ok && t.Payload != nil {
		payloadBytes = c.encode(t.Payload)
	} else if gp, ok := t.Payload.(GenericPayload); ok {
		payloadBytes = gp.Raw
	}
	copy(buf[2:10], payloadBytes[:])

	crc := fec.CCITT(buf[:10])
	buf[10] = byte(crc >> 8)
	buf[11] = byte(crc)
	return buf
}

// Decode parses a 12-byte raw TSBK buffer, validating its CRC-CCITT and
// dispatching to the registered codec for its LCO+MFID, or falling back
// to GenericPayload if none is registered.
func Decode(raw [12]byte) (TSBK, error) {
	want := fec.CCITT(raw[:10])
	got := uint16(raw[10])<<8 | uint16(raw[11])
	if want != got {
		return TSBK{}, ErrCRC
	}

	lco := Opcode(raw[0] & 0x3F)
	lastBlock := raw[0]&0x80 != 0
	mfid := MFID(raw[1])
	var payloadBytes [8]byte
	copy(payloadBytes[:], raw[2:10])

	key := OpcodeKey{LCO: lco, MFID: mfid}
	var payload Payload
	if c, ok := registry[key]; ok {
		p, err := c.decode(payloadBytes)
		if err != nil {
			return TSBK{}, err
		}
		payload = p
	} else {
		payload = GenericPayload{Raw: payloadBytes}
	}

	return TSBK{LCO: lco, MFID: mfid, LastBlock: lastBlock, Payload: payload}, nil
}
