package fne

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math/big"
	"time"

	"github.com/keystone-rf/p25ctrl/internal/p25const"
	"github.com/keystone-rf/p25ctrl/internal/p25err"
)

// PeerState is the peer role's login state machine, per spec.md §4.7's
// login handshake, grounded on packet_handlers.go's repeater connection
// states ("RPTL-RECEIVED" → "CHALLENGE_SENT" → "WAITING_CONFIG" → running).
type PeerState int

const (
	PeerWaitingConnect PeerState = iota
	PeerWaitingLogin
	PeerWaitingAuthorisation
	PeerWaitingConfig
	PeerRunning
)

func (s PeerState) String() string {
	switch s {
	case PeerWaitingConnect:
		return "WAITING_CONNECT"
	case PeerWaitingLogin:
		return "WAITING_LOGIN"
	case PeerWaitingAuthorisation:
		return "WAITING_AUTHORISATION"
	case PeerWaitingConfig:
		return "WAITING_CONFIG"
	case PeerRunning:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}

// MasterState is the master role's mirror of the login handshake.
type MasterState int

const (
	MasterInvalid MasterState = iota
	MasterRPTLReceived
	MasterChallengeSent
	MasterRunning
)

func (s MasterState) String() string {
	switch s {
	case MasterRPTLReceived:
		return "RPTL_RECEIVED"
	case MasterChallengeSent:
		return "CHALLENGE_SENT"
	case MasterRunning:
		return "MST_RUNNING"
	default:
		return "INVALID"
	}
}

// PeerConfig is the JSON-serialized RPTC payload of spec.md §4.7: callsign,
// frequencies, site/channel IDs, GPS, identity string.
type PeerConfig struct {
	Callsign   string  `json:"callsign"`
	RXFreqHz   uint64  `json:"rx_freq_hz"`
	TXFreqHz   uint64  `json:"tx_freq_hz"`
	SiteID     uint8   `json:"site_id"`
	ChannelID  uint8   `json:"channel_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Identity   string  `json:"identity"`
}

// PeerSession drives the peer role's side of the login handshake and
// subsequent ping/pong keepalive. It is a capability split of the source's
// Network base class, per spec.md §9: master and peer roles each implement
// their own half of the same wire protocol rather than inheriting from a
// shared base.
type PeerSession struct {
	PeerID   uint32
	Password string
	Config   PeerConfig

	State       PeerState
	salt        [4]byte
	lastPong    time.Time
	retryTimer  time.Duration
}

// NewPeerSession builds a PeerSession in WAITING_CONNECT.
func NewPeerSession(peerID uint32, password string, cfg PeerConfig, retryTimer time.Duration) *PeerSession {
	return &PeerSession{
		PeerID:     peerID,
		Password:   password,
		Config:     cfg,
		State:      PeerWaitingConnect,
		retryTimer: retryTimer,
	}
}

// BuildRPTL produces the outbound RPTL login frame and advances to
// WAITING_LOGIN.
func (p *PeerSession) BuildRPTL() []byte {
	p.State = PeerWaitingLogin
	h := Header{Func: p25const.FuncRepeaterLogin, PeerID: p.PeerID, SSRC: p.PeerID}
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, p.PeerID)
	return h.Encode(payload)
}

// HandleACK processes an inbound ACK, dispatching on the current state per
// the RPTL→RPTK→RPTC chain, returning the next frame to send (if any).
func (p *PeerSession) HandleACK(payload []byte) ([]byte, error) {
	switch p.State {
	case PeerWaitingLogin:
		if len(payload) < 4 {
			return nil, p25err.ErrFrameUndecodable
		}
		copy(p.salt[:], payload[:4])
		p.State = PeerWaitingAuthorisation
		return p.buildRPTK(), nil
	case PeerWaitingAuthorisation:
		p.State = PeerWaitingConfig
		return p.buildRPTC(), nil
	case PeerWaitingConfig:
		p.State = PeerRunning
		p.lastPong = time.Now()
		return nil, nil
	default:
		return nil, errors.New("fne: unexpected ACK in state " + p.State.String())
	}
}

// HandleNAK resets the session to WAITING_CONNECT. It only changes State:
// it does not clear stream IDs or start a login retry.
func (p *PeerSession) HandleNAK() {
	p.State = PeerWaitingConnect
}

func (p *PeerSession) buildRPTK() []byte {
	digest := sha256.Sum256(append(p.salt[:], []byte(p.Password)...))
	h := Header{Func: p25const.FuncRepeaterAuth, PeerID: p.PeerID, SSRC: p.PeerID}
	return h.Encode(digest[:])
}

func (p *PeerSession) buildRPTC() []byte {
	h := Header{Func: p25const.FuncRepeaterConfig, PeerID: p.PeerID, SSRC: p.PeerID}
	body, err := json.Marshal(p.Config)
	if err != nil {
		// PeerConfig's fields are all plain JSON-marshalable types;
		// a marshal error here indicates a corrupt build.
		panic(err)
	}
	return h.Encode(body)
}

// BuildPing produces a keepalive ping frame, valid once RUNNING.
func (p *PeerSession) BuildPing() []byte {
	h := Header{Func: p25const.FuncPing, PeerID: p.PeerID, SSRC: p.PeerID}
	return h.Encode(nil)
}

// HandlePong refreshes the last-pong deadline.
func (p *PeerSession) HandlePong() {
	p.lastPong = time.Now()
}

// PongExpired reports whether no pong has arrived within three retry-timer
// periods before now, signalling NetworkConnectionLost.
func (p *PeerSession) PongExpired(now time.Time) bool {
	if p.State != PeerRunning {
		return false
	}
	return now.Sub(p.lastPong) > p.retryTimer*3
}

// MasterSession drives the master role's mirror of the handshake, per
// packet_handlers.go's handleRPTLPacket/handleRPTKPacket.
type MasterSession struct {
	PeerID   uint32
	Password string

	State MasterState
	salt  uint32
}

// NewMasterSession builds a MasterSession for an inbound RPTL.
func NewMasterSession(peerID uint32, password string) *MasterSession {
	return &MasterSession{PeerID: peerID, Password: password, State: MasterRPTLReceived}
}

// IssueChallenge generates a random 32-bit salt and returns the ACK frame
// carrying it, per packet_handlers.go's handleRPTLPacket.
func (m *MasterSession) IssueChallenge() ([]byte, error) {
	bigSalt, err := rand.Int(rand.Reader, big.NewInt(0xFFFFFFFF))
	if err != nil {
		return nil, err
	}
	m.salt = uint32(bigSalt.Uint64())
	m.State = MasterChallengeSent
	h := Header{Func: p25const.FuncACK, PeerID: m.PeerID, SSRC: m.PeerID}
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, m.salt)
	return h.Encode(payload), nil
}

// VerifyRPTK validates an inbound RPTK digest against the issued salt and
// configured password, per packet_handlers.go's handleRPTKPacket.
func (m *MasterSession) VerifyRPTK(digest []byte) bool {
	if m.State != MasterChallengeSent {
		return false
	}
	saltBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(saltBytes, m.salt)
	want := sha256.Sum256(append(saltBytes, []byte(m.Password)...))
	if len(digest) != len(want) {
		return false
	}
	for i := range want {
		if digest[i] != want[i] {
			return false
		}
	}
	m.State = MasterRunning
	return true
}
