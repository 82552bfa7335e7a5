// Package modem defines the out-of-scope modem transport collaborator of
// spec.md §1/§6: a byte-stream transport plus the named control-plane
// opcode set the control core exchanges with it. The transport itself
// (serial, PTY, UDP-to-DSP) is not implemented here — only the interface
// the control engine's I/O leaf depends on.
package modem

import (
	"context"
	"errors"

	"github.com/keystone-rf/p25ctrl/internal/p25const"
)

// ErrShortFrame is returned when buf doesn't contain a complete frame.
var ErrShortFrame = errors.New("modem: buffer shorter than declared frame length")

// Transport is the byte-stream collaborator spec.md §1 names as an
// external dependency: open/close a channel to the DSP and read/write
// length-prefixed command frames over it.
type Transport interface {
	Open(ctx context.Context) error
	Close() error
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, frame []byte) error
}

// Frame is one length-prefixed control-plane exchange: a single opcode
// byte followed by an opcode-specific payload.
type Frame struct {
	Opcode  p25const.ModemOpcode
	Payload []byte
}

// Encode serializes f as a length-prefixed frame: a 2-byte big-endian
// length covering opcode+payload, then the opcode byte, then the payload.
func (f Frame) Encode() []byte {
	buf := make([]byte, 2+1+len(f.Payload))
	length := uint16(1 + len(f.Payload))
	buf[0] = byte(length >> 8)
	buf[1] = byte(length)
	buf[2] = byte(f.Opcode)
	copy(buf[3:], f.Payload)
	return buf
}

// DecodeFrame parses one length-prefixed frame from the front of buf,
// returning the frame and the number of bytes consumed.
func DecodeFrame(buf []byte) (Frame, int, error) {
	if len(buf) < 3 {
		return Frame{}, 0, ErrShortFrame
	}
	length := int(buf[0])<<8 | int(buf[1])
	if len(buf) < 2+length {
		return Frame{}, 0, ErrShortFrame
	}
	f := Frame{
		Opcode:  p25const.ModemOpcode(buf[2]),
		Payload: buf[3 : 2+length],
	}
	return f, 2 + length, nil
}
