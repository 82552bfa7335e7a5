package control

import (
	"errors"

	"github.com/keystone-rf/p25ctrl/internal/p25/frame"
	"github.com/keystone-rf/p25ctrl/internal/p25/voice"
	"github.com/keystone-rf/p25ctrl/internal/p25const"
	"github.com/keystone-rf/p25ctrl/internal/p25err"
)

// ErrRFBusy is returned by ProcessNet when network-originated voice
// arrives while RF is already in an audio call, per spec.md §4.3's rule
// that at most one of {RF, Net} may be non-idle for a call at a time.
var ErrRFBusy = errors.New("control: RF busy, network voice rejected")

// EnqueueNetFrame appends a peer-network frame for ProcessNet to
// dequeue. In the full system this is driven by internal/network/fne's
// per-protocol ring buffer; the engine only needs a FIFO of pending
// frames.
func (e *Engine) EnqueueNetFrame(b []byte) {
	e.netQueue = append(e.netQueue, b)
}

// ProcessNet dequeues one peer-network frame and applies the symmetric
// pipeline for network-originated traffic, per spec.md §4.3.
func (e *Engine) ProcessNet() error {
	if len(e.netQueue) == 0 {
		return nil
	}
	frameBuf := e.netQueue[0]
	e.netQueue = e.netQueue[1:]

	nac, duid, err := frame.DecodeNID(frameBuf)
	if err != nil {
		return err
	}
	_ = nac

	switch duid {
	case p25const.DUIDHDU:
		if e.RFState == RFAudio {
			return ErrRFBusy
		}
		e.NetState = NetAudio
		out := e.Voice.ProcessHDU(frameBuf[tsduPayloadOffset():])
		e.enqueueVoiceFrame(out)
	case p25const.DUIDLDU1:
		if e.RFState == RFAudio {
			return ErrRFBusy
		}
		var ok [voice.ImbeFrameCount]bool
		for i := range ok {
			ok[i] = true
		}
		out, _, err := e.Voice.ProcessLDU1(frameBuf[tsduPayloadOffset():], ok)
		if err != nil {
			return err
		}
		e.enqueueVoiceFrame(out)
	case p25const.DUIDLDU2:
		if e.RFState == RFAudio {
			return ErrRFBusy
		}
		var ok [voice.ImbeFrameCount]bool
		for i := range ok {
			ok[i] = true
		}
		out, _, err := e.Voice.ProcessLDU2(frameBuf[tsduPayloadOffset():], ok)
		if err != nil {
			return err
		}
		e.enqueueVoiceFrame(out)
	case p25const.DUIDTDU:
		e.Voice.ProcessTDU()
		e.enqueue(e.encodeTDU())
		e.NetState = NetIdle
	case p25const.DUIDTSDU:
		return e.processTSDU(frameBuf[tsduPayloadOffset():], false)
	default:
		return p25err.ErrFrameUndecodable
	}
	return nil
}
