package voice

import (
	"testing"

	"github.com/keystone-rf/p25ctrl/internal/crypto/keys"
	vcrypto "github.com/keystone-rf/p25ctrl/internal/crypto/voice"
	"github.com/keystone-rf/p25ctrl/internal/p25/lc"
	"github.com/keystone-rf/p25ctrl/internal/p25const"
)

func allOK() [ImbeFrameCount]bool {
	var ok [ImbeFrameCount]bool
	for i := range ok {
		ok[i] = true
	}
	return ok
}

func TestIMBEFrameRoundTrip(t *testing.T) {
	buf := make([]byte, LDUBufferLen)
	var frames [ImbeFrameCount][]byte
	for i := range frames {
		size := imbeBitSizes[i]
		frame := make([]byte, (size+7)/8)
		for b := range frame {
			frame[b] = byte(0xA5 + i)
		}
		// mask to the exact bit width so round trip is exact
		extra := len(frame)*8 - size
		if extra > 0 {
			frame[0] &= 0xFF >> uint(extra)
		}
		frames[i] = frame
	}
	InsertIMBEFrames(buf, frames)
	got := ExtractIMBEFrames(buf)
	for i := range frames {
		if string(got[i]) != string(frames[i]) {
			t.Errorf("frame %d mismatch: want %x got %x", i, frames[i], got[i])
		}
	}
}

func TestEmbeddedLCRoundTrip(t *testing.T) {
	buf := make([]byte, LDUBufferLen)
	want := lc.TSBK{
		LCO:  lc.OpOSPSyncBcast,
		MFID: lc.MFIDStandard,
		Payload: lc.SyncBroadcast{
			Microslot: 99,
		},
	}
	InsertEmbeddedLC(buf, want)
	got, err := ExtractEmbeddedLC(buf)
	if err != nil {
		t.Fatalf("ExtractEmbeddedLC: %v", err)
	}
	if got.LCO != want.LCO || got.MFID != want.MFID {
		t.Fatalf("embedded LC mismatch: got %+v want %+v", got, want)
	}
}

func TestEncryptionSyncRoundTrip(t *testing.T) {
	buf := make([]byte, LDUBufferLen)
	want := EncryptionSync{
		AlgorithmID: keys.AlgorithmAES256,
		KeyID:       0x1234,
		MI:          vcrypto.MI{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}
	InsertEncryptionSync(buf, want)
	got := ExtractEncryptionSync(buf)
	if got != want {
		t.Fatalf("encryption sync mismatch: got %+v want %+v", got, want)
	}
}

func TestCallLifecycleMintsStreamAndResetsSequence(t *testing.T) {
	p := NewPipeline(nil)
	hdu := p.ProcessHDU(make([]byte, LDUBufferLen))
	if hdu.Sequence != 0 {
		t.Fatalf("expected sequence 0 on HDU, got %d", hdu.Sequence)
	}
	firstStream := hdu.StreamID

	ldu1Buf := make([]byte, LDUBufferLen)
	InsertEmbeddedLC(ldu1Buf, lc.TSBK{LCO: lc.OpOSPSyncBcast, MFID: lc.MFIDStandard, Payload: lc.SyncBroadcast{}})
	out1, _, err := p.ProcessLDU1(ldu1Buf, allOK())
	if err != nil {
		t.Fatalf("ProcessLDU1: %v", err)
	}
	if out1.Sequence != 1 {
		t.Fatalf("expected sequence 1 after HDU, got %d", out1.Sequence)
	}
	if out1.StreamID != firstStream {
		t.Fatalf("stream ID changed mid-call")
	}

	tdu := p.ProcessTDU()
	if tdu.Sequence != p25const.EndOfCallSequence {
		t.Fatalf("expected end-of-call sentinel, got %d", tdu.Sequence)
	}
	if p.State != StateIdle {
		t.Fatalf("expected pipeline to return to idle after TDU")
	}

	// A second call starts its packet sequence over at 0.
	hdu2 := p.ProcessHDU(make([]byte, LDUBufferLen))
	if hdu2.Sequence != 0 {
		t.Fatalf("expected sequence reset to 0 on second HDU, got %d", hdu2.Sequence)
	}
}

func TestProcessLDU1WithoutActiveCallErrors(t *testing.T) {
	p := NewPipeline(nil)
	_, _, err := p.ProcessLDU1(make([]byte, LDUBufferLen), allOK())
	if err != ErrNoStream {
		t.Fatalf("expected ErrNoStream, got %v", err)
	}
}

func TestMissingFrameSilenceFill(t *testing.T) {
	p := NewPipeline(nil)
	p.ProcessHDU(make([]byte, LDUBufferLen))

	buf := make([]byte, LDUBufferLen)
	InsertEmbeddedLC(buf, lc.TSBK{LCO: lc.OpOSPSyncBcast, MFID: lc.MFIDStandard, Payload: lc.SyncBroadcast{}})
	ok := allOK()
	ok[0] = false
	if _, _, err := p.ProcessLDU1(buf, ok); err != nil {
		t.Fatalf("ProcessLDU1: %v", err)
	}
	frames := ExtractIMBEFrames(buf)
	if len(frames[0]) == 0 {
		t.Fatalf("expected a silence-filled frame of nonzero length")
	}
}
