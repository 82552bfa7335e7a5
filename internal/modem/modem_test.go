package modem

import (
	"testing"

	"github.com/keystone-rf/p25ctrl/internal/p25const"
)

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{Opcode: p25const.ModemP25Data, Payload: []byte{0xAA, 0xBB, 0xCC}}
	buf := f.Encode()

	got, n, err := DecodeFrame(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("expected to consume %d bytes, got %d", len(buf), n)
	}
	if got.Opcode != f.Opcode {
		t.Fatalf("opcode mismatch: got %v want %v", got.Opcode, f.Opcode)
	}
	if string(got.Payload) != string(f.Payload) {
		t.Fatalf("payload mismatch: got %v want %v", got.Payload, f.Payload)
	}
}

func TestDecodeFrameShortBuffer(t *testing.T) {
	if _, _, err := DecodeFrame([]byte{0x00}); err != ErrShortFrame {
		t.Fatalf("expected ErrShortFrame, got %v", err)
	}
}

func TestDecodeFrameConsumesOnlyDeclaredLength(t *testing.T) {
	f := Frame{Opcode: p25const.ModemACK}
	buf := append(f.Encode(), 0xFF, 0xFE) // trailing garbage from a second frame
	_, n, err := DecodeFrame(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected to consume exactly 3 bytes (opcode, no payload), got %d", n)
	}
}
