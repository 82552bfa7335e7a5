package fne

import "github.com/keystone-rf/p25ctrl/internal/p25const"

// StreamTracker implements the receiver side of spec.md §4.7's stream-ID
// discipline: a stream-ID change is an implicit end-of-prior-call plus
// start-of-new-call, and the open question of spec.md §9 ("late-arriving
// packet for the pre-reset stream ID") is resolved by discarding — the
// tracker never reactivates a stream ID once superseded, matching the
// source's stream-ID-keyed receiver demultiplex.
type StreamTracker struct {
	active     bool
	streamID   uint32
	lastSeq    uint16
	superseded map[uint32]struct{}
}

// NewStreamTracker builds an empty tracker.
func NewStreamTracker() *StreamTracker {
	return &StreamTracker{superseded: make(map[uint32]struct{})}
}

// Observe reports whether seq is acceptable for streamID: a new stream ID
// always starts a call, whatever its seq; seq 65535 marks end-of-call and
// deactivates the tracker. A packet for a stream ID already superseded by
// a newer one is discarded (open question §9).
func (t *StreamTracker) Observe(streamID uint32, seq uint16) bool {
	if _, done := t.superseded[streamID]; done {
		return false
	}
	if !t.active || streamID != t.streamID {
		if t.active {
			t.superseded[t.streamID] = struct{}{}
		}
		t.active = true
		t.streamID = streamID
		t.lastSeq = seq
		return true
	}
	t.lastSeq = seq
	if seq == p25const.EndOfCallSequence {
		t.active = false
		t.superseded[streamID] = struct{}{}
	}
	return true
}

// Active reports whether a call is currently open.
func (t *StreamTracker) Active() bool {
	return t.active
}
