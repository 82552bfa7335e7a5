package data

import (
	"testing"
	"time"

	"github.com/keystone-rf/p25ctrl/internal/fec"
)

func buildPDU(body []byte, blockSize int) [][]byte {
	crc := fec.CCITT(body)
	full := append(append([]byte{}, body...), byte(crc>>8), byte(crc))
	var blocks [][]byte
	for i := 0; i < len(full); i += blockSize {
		end := i + blockSize
		if end > len(full) {
			end = len(full)
		}
		blocks = append(blocks, full[i:end])
	}
	return blocks
}

func TestReassemblyCompletesOnLastBlockWithValidCRC(t *testing.T) {
	r := NewReassembler()
	body := []byte("hello p25 data pipeline payload")
	blocks := buildPDU(body, 12)

	var got []byte
	var complete bool
	var err error
	for i, b := range blocks {
		got, complete, err = r.AddBlock(0xABCD, true, len(blocks), i, b)
		if i < len(blocks)-1 && complete {
			t.Fatalf("reassembly completed early at block %d", i)
		}
	}
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if !complete {
		t.Fatalf("expected completion on last block")
	}
	if string(got) != string(body) {
		t.Fatalf("reassembled payload mismatch: got %q want %q", got, body)
	}
}

func TestReassemblyRejectsBadCRC(t *testing.T) {
	r := NewReassembler()
	body := []byte("some payload data")
	blocks := buildPDU(body, 8)
	blocks[len(blocks)-1][len(blocks[len(blocks)-1])-1] ^= 0xFF

	var err error
	for i, b := range blocks {
		_, _, err = r.AddBlock(1, true, len(blocks), i, b)
	}
	if err != ErrCRC {
		t.Fatalf("expected ErrCRC, got %v", err)
	}
}

func TestReassemblyBlockCountMismatch(t *testing.T) {
	r := NewReassembler()
	_, _, err := r.AddBlock(5, false, 3, 0, []byte{1, 2})
	if err != nil {
		t.Fatalf("unexpected error on first block: %v", err)
	}
	_, _, err = r.AddBlock(5, false, 4, 1, []byte{3, 4})
	if err != ErrBlockCountMismatch {
		t.Fatalf("expected ErrBlockCountMismatch, got %v", err)
	}
}

func TestSNDCPSessionLifecycle(t *testing.T) {
	s := NewSNDCPSessions(10*time.Minute, 2*time.Minute)
	now := time.Now()

	s.Initialize(42)
	st, ok := s.State(42)
	if !ok || st != SNDCPInitialized {
		t.Fatalf("expected INITIALIZED, got %v ok=%v", st, ok)
	}

	s.Activate(42, now)
	st, _ = s.State(42)
	if st != SNDCPReady {
		t.Fatalf("expected READY, got %v", st)
	}

	torndown := s.Tick(now.Add(11 * time.Minute))
	if len(torndown) != 0 {
		t.Fatalf("expected no teardown transitioning READY->STANDBY, got %v", torndown)
	}
	st, _ = s.State(42)
	if st != SNDCPStandby {
		t.Fatalf("expected STANDBY after ready timeout, got %v", st)
	}

	torndown = s.Tick(now.Add(20 * time.Minute))
	if len(torndown) != 1 || torndown[0] != 42 {
		t.Fatalf("expected session 42 torn down, got %v", torndown)
	}
	if _, ok := s.State(42); ok {
		t.Fatalf("expected session removed after standby timeout")
	}
}

func TestRegistrationsRoundTrip(t *testing.T) {
	r := NewRegistrations()
	addr := PackedAddr{IPv4: [4]byte{10, 0, 0, 1}, Port: 4001}
	r.Register(100, addr)
	got, ok := r.Lookup(100)
	if !ok || got != addr {
		t.Fatalf("expected registered address, got %+v ok=%v", got, ok)
	}
	r.Deregister(100)
	if _, ok := r.Lookup(100); ok {
		t.Fatalf("expected deregistration to remove entry")
	}
}
