package fne

import (
	"errors"
	"net"
	"sync"

	"github.com/tinylib/msgp/msgp"

	"github.com/keystone-rf/p25ctrl/internal/p25const"
)

// ErrRingFull is returned when a protocol's ring buffer has no room left
// for a new record.
var ErrRingFull = errors.New("fne: ring buffer full")

// ErrBadSource is returned when a frame's source address does not match
// the configured master address and is rejected rather than enqueued, per
// spec.md §4.7's source-address validation rule.
var ErrBadSource = errors.New("fne: frame source address does not match master")

// Ring is a fixed-capacity (spec.md §4.7: 4000 bytes per protocol) FIFO of
// length-prefixed byte blobs, decoupling the UDP reader goroutine from a
// single protocol's processing goroutine. Each record is appended as a raw
// msgpack bin value via tinylib/msgp's runtime Append helpers — the same
// wire envelope the teacher uses for its RawDMRPacket records, applied
// directly rather than through go:generate'd struct marshalers since a
// ring record here is a bare byte blob, not a struct.
type Ring struct {
	mu       sync.Mutex
	records  [][]byte
	capacity int
	used     int
}

// NewRing builds an empty Ring with the given byte capacity.
func NewRing(capacity int) *Ring {
	return &Ring{capacity: capacity}
}

// Push enqueues data, failing with ErrRingFull if it would exceed capacity.
func (r *Ring) Push(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.used+len(data) > r.capacity {
		return ErrRingFull
	}
	envelope := msgp.AppendBytes(nil, data)
	r.records = append(r.records, envelope)
	r.used += len(data)
	return nil
}

// Pop dequeues the oldest record, if any, decoding it back out of its
// msgpack bin envelope.
func (r *Ring) Pop() ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return nil, false
	}
	envelope := r.records[0]
	r.records = r.records[1:]
	data, _, err := msgp.ReadBytesBytes(envelope, nil)
	if err != nil {
		return nil, false
	}
	r.used -= len(data)
	return data, true
}

// Len reports the number of queued records.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Rings holds the three per-protocol ring buffers (DMR, P25, NXDN) of
// spec.md §4.7, each sized p25const.RingBufferCapacity bytes.
type Rings struct {
	DMR  *Ring
	P25  *Ring
	NXDN *Ring

	masterAddr *net.UDPAddr
}

// NewRings builds the three per-protocol rings, validating inbound source
// addresses against masterAddr.
func NewRings(masterAddr *net.UDPAddr) *Rings {
	return &Rings{
		DMR:        NewRing(p25const.RingBufferCapacity),
		P25:        NewRing(p25const.RingBufferCapacity),
		NXDN:       NewRing(p25const.RingBufferCapacity),
		masterAddr: masterAddr,
	}
}

// Dispatch validates src against the configured master address, then
// routes payload (by its protocol subfunction byte) into the matching
// ring. A source mismatch returns ErrBadSource without enqueuing — callers
// should log this as a security warning, per spec.md §4.7.
func (r *Rings) Dispatch(src *net.UDPAddr, sub p25const.ProtoSubFunc, payload []byte) error {
	if r.masterAddr != nil && !src.IP.Equal(r.masterAddr.IP) {
		return ErrBadSource
	}
	switch sub {
	case p25const.ProtoSubDMR:
		return r.DMR.Push(payload)
	case p25const.ProtoSubP25:
		return r.P25.Push(payload)
	case p25const.ProtoSubNXDN:
		return r.NXDN.Push(payload)
	default:
		return errors.New("fne: unknown protocol subfunction")
	}
}
