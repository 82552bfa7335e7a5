package data

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/keystone-rf/p25ctrl/internal/p25err"
)

// SNDCPState is one of the three SNDCP session states per spec.md §4.5.
type SNDCPState int

const (
	SNDCPInitialized SNDCPState = iota
	SNDCPReady
	SNDCPStandby
)

func (s SNDCPState) String() string {
	switch s {
	case SNDCPInitialized:
		return "INITIALIZED"
	case SNDCPReady:
		return "READY"
	case SNDCPStandby:
		return "STANDBY"
	default:
		return "UNKNOWN"
	}
}

// sndcpSession is one logical link's SNDCP session record.
type sndcpSession struct {
	state    SNDCPState
	deadline time.Time
}

// SNDCPSessions is the per-logical-link-ID SNDCP session table.
type SNDCPSessions struct {
	sessions     *xsync.Map[uint32, sndcpSession]
	readyTimeout time.Duration
	standbyTimeout time.Duration
}

// NewSNDCPSessions builds an empty session table with the given
// ready/standby hold durations.
func NewSNDCPSessions(readyTimeout, standbyTimeout time.Duration) *SNDCPSessions {
	return &SNDCPSessions{
		sessions:       xsync.NewMap[uint32, sndcpSession](),
		readyTimeout:   readyTimeout,
		standbyTimeout: standbyTimeout,
	}
}

// Initialize starts (or restarts) a session for llid in the
// INITIALIZED state.
func (s *SNDCPSessions) Initialize(llid uint32) {
	s.sessions.Store(llid, sndcpSession{state: SNDCPInitialized})
}

// Activate transitions llid to READY, starting the ready-hold timer.
func (s *SNDCPSessions) Activate(llid uint32, now time.Time) {
	s.sessions.Store(llid, sndcpSession{state: SNDCPReady, deadline: now.Add(s.readyTimeout)})
}

// Touch refreshes the READY (or STANDBY) deadline for llid on data
// activity.
func (s *SNDCPSessions) Touch(llid uint32, now time.Time) {
	sess, ok := s.sessions.Load(llid)
	if !ok {
		return
	}
	switch sess.state {
	case SNDCPReady:
		sess.deadline = now.Add(s.readyTimeout)
	case SNDCPStandby:
		sess.deadline = now.Add(s.standbyTimeout)
	default:
		return
	}
	s.sessions.Store(llid, sess)
}

// State reports llid's current session state, if any.
func (s *SNDCPSessions) State(llid uint32) (SNDCPState, bool) {
	sess, ok := s.sessions.Load(llid)
	return sess.state, ok
}

// Tick advances every session's hold timer against now: a READY session
// past deadline moves to STANDBY (with a fresh standby deadline); a
// STANDBY session past deadline is torn down entirely. Returns the
// logical link IDs torn down this tick.
func (s *SNDCPSessions) Tick(now time.Time) []uint32 {
	var torndown []uint32
	s.sessions.Range(func(llid uint32, sess sndcpSession) bool {
		if sess.deadline.IsZero() || now.Before(sess.deadline) {
			return true
		}
		switch sess.state {
		case SNDCPReady:
			s.sessions.Store(llid, sndcpSession{state: SNDCPStandby, deadline: now.Add(s.standbyTimeout)})
		case SNDCPStandby:
			s.sessions.Delete(llid)
			torndown = append(torndown, llid)
		}
		return true
	})
	return torndown
}

// Deregister removes llid's session immediately, e.g. on
// ISP_U_DEREG_REQ.
func (s *SNDCPSessions) Deregister(llid uint32) {
	s.sessions.Delete(llid)
}

// PackedAddr is a packed IPv4 address + port, as the FNE registration
// table stores it.
type PackedAddr struct {
	IPv4 [4]byte
	Port uint16
}

// Registrations is the FNE data-registration table: logical link ID ->
// the SU's last-known reachable address, for SUs registered for data
// service. Expires on deregistration.
type Registrations struct {
	table *xsync.Map[uint32, PackedAddr]
}

// NewRegistrations builds an empty registration table.
func NewRegistrations() *Registrations {
	return &Registrations{table: xsync.NewMap[uint32, PackedAddr]()}
}

// Register records llid's reachable address.
func (r *Registrations) Register(llid uint32, addr PackedAddr) {
	r.table.Store(llid, addr)
}

// Deregister removes llid's registration.
func (r *Registrations) Deregister(llid uint32) {
	r.table.Delete(llid)
}

// Lookup returns llid's registered address, if any.
func (r *Registrations) Lookup(llid uint32) (PackedAddr, bool) {
	return r.table.Load(llid)
}

// ErrSNDCPDisabled is returned by control.Engine.RequestSNDCPChannel when SNDCP grants are
// administratively disabled, surfacing as OSP_DENY_RSP
// "system-unsupported-service" per spec.md §4.5.
var ErrSNDCPDisabled = p25err.NewGrantDenied(p25err.ReasonSystemUnsupportedService)
