// Package control implements the P25 Control engine of spec.md §4.3: the
// process_rf/process_net/get_frame/tick operations, the control-channel
// signaling cycle, and the grant-admission decision table. It composes
// internal/p25/trunk (grant/affiliation/adjacent-site tables),
// internal/p25/voice, internal/p25/data, internal/p25/lc, and
// internal/p25/site, wiring them the way HBRP's server.go wires its
// handler dependencies as plain struct fields rather than a DI
// container — grounded on internal/dmr/servers/hbrp/server.go.
package control

import (
	"time"

	"github.com/keystone-rf/p25ctrl/internal/crypto/keys"
	"github.com/keystone-rf/p25ctrl/internal/p25/data"
	"github.com/keystone-rf/p25ctrl/internal/p25/frame"
	"github.com/keystone-rf/p25ctrl/internal/p25/lc"
	"github.com/keystone-rf/p25ctrl/internal/p25/site"
	"github.com/keystone-rf/p25ctrl/internal/p25/trunk"
	"github.com/keystone-rf/p25ctrl/internal/p25/voice"
	"github.com/keystone-rf/p25ctrl/internal/p25const"
	"github.com/keystone-rf/p25ctrl/internal/p25err"
)

// RFState is the RF-facing call state, per spec.md §3.
type RFState int

const (
	RFListening RFState = iota
	RFLateEntry
	RFAudio
	RFData
	RFRejected
	RFInvalid
)

// NetState is the network-facing call state, per spec.md §3.
type NetState int

const (
	NetIdle NetState = iota
	NetAudio
	NetData
)

// Config holds the admission-policy knobs spec.md §4.3/§5 names as
// configurable.
type Config struct {
	GrantTimer          time.Duration
	TalkgroupHangTimer  time.Duration
	GrantSourceCheck    bool
	SupervisoryMode     bool
	GrantRetransmits    int
	SNDCPEnabled        bool
	SNDCPReadyTimeout   time.Duration
	SNDCPStandbyTimeout time.Duration
}

// DefaultConfig mirrors the concurrency & resource model's stated
// defaults (spec.md §5).
func DefaultConfig() Config {
	return Config{
		GrantTimer:          p25const.DefaultGrantTimerSeconds * time.Second,
		TalkgroupHangTimer:  p25const.DefaultTalkgroupHangSeconds * time.Second,
		GrantSourceCheck:    true,
		GrantRetransmits:    1,
		SNDCPReadyTimeout:   10 * time.Minute,
		SNDCPStandbyTimeout: 2 * time.Minute,
	}
}

// SupervisoryAdmitFunc is the out-of-band admission hook called on the
// voice-channel repeater when supervisory mode is enabled.
type SupervisoryAdmitFunc func(channel uint16, dst uint32) error

// Engine is the P25 Control engine: one instance per site, owning every
// table and pipeline a control channel (or a voice channel with
// supervisory responsibilities) needs.
type Engine struct {
	Site       site.Data
	Identities *site.IdentityTable

	Grants   *trunk.Grants
	Aff      *trunk.Affiliations
	Adjacent *trunk.Adjacent

	Voice    *voice.Pipeline
	SNDCP    *data.SNDCPSessions
	Regs     *data.Registrations
	Reassem  *data.Reassembler

	cfg              Config
	IsControlChannel bool
	SupervisoryAdmit SupervisoryAdmitFunc

	RFState  RFState
	NetState NetState
	interrupt bool

	frameCnt int
	tickN    int

	lastTalker   map[uint32]uint32
	hangDeadline map[uint32]time.Time

	txQueue  [][]byte
	netQueue [][]byte

	grantRRIndex int
	adjRRIndex   int

	activeRFDst uint32
}

// New builds an Engine for the given site identity, channel pool, and
// key lookup (nil disables voice decryption).
func New(s site.Data, identities *site.IdentityTable, channels []uint16, keyLookup keys.Lookup, cfg Config) *Engine {
	return &Engine{
		Site:         s,
		Identities:   identities,
		Grants:       trunk.NewGrants(channels),
		Aff:          trunk.NewAffiliations(),
		Adjacent:     trunk.NewAdjacent(p25const.DefaultAdjacentSiteUpdateCounter),
		Voice:        voice.NewPipeline(keyLookup),
		SNDCP:        data.NewSNDCPSessions(cfg.SNDCPReadyTimeout, cfg.SNDCPStandbyTimeout),
		Regs:         data.NewRegistrations(),
		Reassem:      data.NewReassembler(),
		cfg:          cfg,
		RFState:      RFListening,
		NetState:     NetIdle,
		lastTalker:   make(map[uint32]uint32),
		hangDeadline: make(map[uint32]time.Time),
	}
}

func (e *Engine) enqueue(b []byte) {
	e.txQueue = append(e.txQueue, b)
}

// GetFrame pops one fully-framed outbound buffer from the TX queue, if
// any, per spec.md §4.3.
func (e *Engine) GetFrame() ([]byte, bool) {
	if len(e.txQueue) == 0 {
		return nil, false
	}
	b := e.txQueue[0]
	e.txQueue = e.txQueue[1:]
	return b, true
}

// ProcessRF drives one modem frame through the RF pipeline, per
// spec.md §4.3.
func (e *Engine) ProcessRF(frameBuf []byte) error {
	nac, duid, err := frame.DecodeNID(frameBuf)
	if err != nil {
		return err
	}
	_ = nac

	if e.IsControlChannel && duid != p25const.DUIDTSDU {
		e.interrupt = true
	}

	payload := frameBuf[tsduPayloadOffset():]
	switch duid {
	case p25const.DUIDHDU:
		e.RFState = RFAudio
		out := e.Voice.ProcessHDU(payload)
		e.enqueueVoiceFrame(out)
	case p25const.DUIDLDU1:
		var ok [voice.ImbeFrameCount]bool
		for i := range ok {
			ok[i] = true
		}
		out, _, err := e.Voice.ProcessLDU1(payload, ok)
		if err != nil {
			return err
		}
		e.enqueueVoiceFrame(out)
	case p25const.DUIDLDU2:
		var ok [voice.ImbeFrameCount]bool
		for i := range ok {
			ok[i] = true
		}
		out, _, err := e.Voice.ProcessLDU2(payload, ok)
		if err != nil {
			return err
		}
		e.enqueueVoiceFrame(out)
	case p25const.DUIDTDU:
		e.onTDU()
	case p25const.DUIDTSDU:
		return e.processTSDU(payload, true)
	default:
		return p25err.ErrFrameUndecodable
	}
	return nil
}

// onTDU implements the normal call-end path: emit a framed TDU, reset RF
// to listening, and start the talkgroup hang timer for the released
// destination.
func (e *Engine) onTDU() {
	e.Voice.ProcessTDU()
	e.enqueue(e.encodeTDU())
	if e.activeRFDst != 0 {
		e.hangDeadline[e.activeRFDst] = time.Now().Add(e.cfg.TalkgroupHangTimer)
		e.activeRFDst = 0
	}
	e.RFState = RFListening
}

// encodeTDU builds a fully-framed bare TDU buffer (sync + NID only — a
// TDU carries no payload body).
func (e *Engine) encodeTDU() []byte {
	buf := make([]byte, tsduPayloadOffset())
	frame.AddSync(buf)
	frame.EncodeNID(buf, e.nac(), p25const.DUIDTDU)
	return buf
}

// TagLost is the modem-reported transmission-loss handler of
// spec.md §4.3: emit a TDU, release the grant, reset RF to listening,
// stop the call timer, flush queues, and reset the peer P25 ring (the
// ring reset itself lives in internal/network/fne; the engine only
// clears its own outbound queue and state here).
func (e *Engine) TagLost(dst uint32) {
	e.Voice.ProcessTDU()
	e.Grants.ReleaseGrant(dst, false)
	e.hangDeadline[dst] = time.Now().Add(e.cfg.TalkgroupHangTimer)
	if e.activeRFDst == dst {
		e.activeRFDst = 0
	}
	e.RFState = RFListening
	e.txQueue = nil
	e.enqueue(e.encodeTDU())
}

func (e *Engine) processTSDU(payload []byte, fromRF bool) error {
	var raw [12]byte
	copy(raw[:], payload)
	t, err := lc.Decode(raw)
	if err != nil {
		return err
	}
	return e.handleTSBK(t, fromRF)
}

func (e *Engine) handleTSBK(t lc.TSBK, fromRF bool) error {
	switch p := t.Payload.(type) {
	case lc.GroupVoiceChannelGrant:
		if p.ChannelNo == 0 && p.ChannelID == 0 {
			_, err := e.WriteRFTSDUGrant(uint32(p.Dest), p.Source, true, !fromRF)
			return err
		}
	case lc.UnitToUnitVoiceChannelGrant:
		if p.ChannelNo == 0 && p.ChannelID == 0 {
			_, err := e.WriteRFTSDUGrant(p.Dest, p.Source, false, !fromRF)
			return err
		}
	case lc.SNDCPChannelRequest:
		_, err := e.RequestSNDCPChannel(p.Source)
		return err
	case lc.GroupAffiliation:
		e.Aff.GroupAff(p.Source, p.Dest)
		e.enqueue(e.encodeTSDU(lc.TSBK{LCO: lc.OpIOSPGrpAff, MFID: lc.MFIDStandard, LastBlock: true, Payload: p}))
	case lc.UnitDeregRequest:
		e.Aff.UnitDereg(p.Source)
		e.enqueue(e.encodeTSDU(lc.TSBK{LCO: lc.OpOSPUDeregAck, MFID: lc.MFIDStandard, LastBlock: true, Payload: lc.UnitDeregAck{Source: p.Source}}))
	}
	return nil
}

func (e *Engine) enqueueVoiceFrame(out voice.OutboundFrame) {
	if out.Payload == nil {
		return
	}
	e.enqueue(out.Payload)
}

// RequestSNDCPChannel implements the SNDCP data-channel grant path of
// spec.md §4.5: if SNDCP grants are enabled, allocate via the same
// mechanism as voice and emit OSP_SNDCP_CH_GNT; otherwise deny
// "unsupported service".
func (e *Engine) RequestSNDCPChannel(source uint32) (lc.TSBK, error) {
	if !e.cfg.SNDCPEnabled {
		t := e.encodeDeny(source, 0, p25err.ReasonSystemUnsupportedService)
		e.enqueue(e.encodeTSDU(t))
		return t, data.ErrSNDCPDisabled
	}
	rec, err := e.Grants.Grant(source, source, e.cfg.GrantTimer, false, false)
	if err != nil {
		t := e.encodeQueue(source, 0)
		e.enqueue(e.encodeTSDU(t))
		return t, p25err.NewGrantQueued(p25err.ReasonChannelResourceNotAvailable)
	}
	e.SNDCP.Activate(source, time.Now())
	t := lc.TSBK{
		LCO:       lc.OpOSPSNDCPChGnt,
		MFID:      lc.MFIDStandard,
		LastBlock: true,
		Payload:   lc.SNDCPChannelGrant{Dest: uint32(rec.Channel), ChannelID: 0, ChannelNo: rec.Channel},
	}
	e.enqueue(e.encodeTSDU(t))
	return t, nil
}

func (e *Engine) encodeDeny(src, dst uint32, reason p25err.DenyReason) lc.TSBK {
	return lc.TSBK{
		LCO:       lc.OpOSPDenyRsp,
		MFID:      lc.MFIDStandard,
		LastBlock: true,
		Payload: lc.DenyResponse{
			ServiceType: 0,
			ReasonCode:  denyReasonCode(reason),
			Source:      src,
			Dest:        dst,
		},
	}
}

func (e *Engine) encodeQueue(src, dst uint32) lc.TSBK {
	return lc.TSBK{
		LCO:       lc.OpOSPQueueRsp,
		MFID:      lc.MFIDStandard,
		LastBlock: true,
		Payload: lc.QueueResponse{
			ServiceType: 0,
			ReasonCode:  0,
			Source:      src,
			Dest:        dst,
		},
	}
}

func denyReasonCode(r p25err.DenyReason) byte {
	switch r {
	case p25err.ReasonPTTCollision:
		return 0x01
	case p25err.ReasonPTTBonk:
		return 0x02
	case p25err.ReasonTargetUnitRefused:
		return 0x10
	case p25err.ReasonTargetGroupNotValid:
		return 0x11
	case p25err.ReasonRequestingUnitNotValid:
		return 0x20
	case p25err.ReasonRequestingUnitNotAuthorized:
		return 0x21
	case p25err.ReasonSystemUnsupportedService:
		return 0x30
	default:
		return 0xFF
	}
}

// WriteRFTSDUGrant implements the ordered grant-admission decision
// table of spec.md §4.3.
func (e *Engine) WriteRFTSDUGrant(dst, src uint32, group, netOriginated bool) (lc.TSBK, error) {
	// 1. All-call sentinel: accept trivially, no grant emitted.
	if dst == p25const.AllCallID {
		return lc.TSBK{}, nil
	}

	// 2. RF must be listening or already running data for a new grant.
	if e.RFState != RFListening && e.RFState != RFData {
		t := e.encodeDeny(src, dst, p25err.ReasonPTTCollision)
		e.enqueue(e.encodeTSDU(t))
		return t, p25err.NewGrantDenied(p25err.ReasonPTTCollision)
	}

	// 3. PTT bonk: a different talker during the talkgroup hang window.
	if last, ok := e.lastTalker[dst]; ok && last != src {
		if dl, ok2 := e.hangDeadline[dst]; ok2 && time.Now().Before(dl) {
			t := e.encodeDeny(src, dst, p25err.ReasonPTTBonk)
			e.enqueue(e.encodeTSDU(t))
			return t, p25err.NewGrantDenied(p25err.ReasonPTTBonk)
		}
	}

	// An existing grant for dst is refreshed rather than re-allocated —
	// steps 4/5 of the decision table implicitly assume no live grant.
	if rec, granted := e.Grants.Get(dst); granted {
		if rec.Source != src && e.cfg.GrantSourceCheck {
			t := e.encodeDeny(src, dst, p25err.ReasonPTTCollision)
			e.enqueue(e.encodeTSDU(t))
			return t, p25err.NewGrantDenied(p25err.ReasonPTTCollision)
		}
		e.Grants.TouchGrant(dst, e.cfg.GrantTimer)
		e.activeRFDst = dst
		t := e.encodeGrant(dst, rec.Channel, src, group)
		e.enqueue(e.encodeTSDU(t))
		return t, nil
	}

	// 4. No voice channel available: queue.
	rec, err := e.Grants.Grant(dst, src, e.cfg.GrantTimer, group, netOriginated)
	if err != nil {
		t := e.encodeQueue(src, dst)
		e.enqueue(e.encodeTSDU(t))
		return t, p25err.NewGrantQueued(p25err.ReasonChannelResourceNotAvailable)
	}

	// 6. Allocate: emit the grant, optionally gated by supervisory
	// admission and retransmitted for reliability.
	if e.cfg.SupervisoryMode && e.SupervisoryAdmit != nil {
		if err := e.SupervisoryAdmit(rec.Channel, dst); err != nil {
			e.Grants.ReleaseGrant(dst, false)
			t := e.encodeDeny(src, dst, p25err.ReasonPTTCollision)
			e.enqueue(e.encodeTSDU(t))
			return t, err
		}
	}
	e.lastTalker[dst] = src
	e.activeRFDst = dst
	t := e.encodeGrant(dst, rec.Channel, src, group)
	retransmits := e.cfg.GrantRetransmits
	if retransmits < 1 {
		retransmits = 1
	}
	for i := 0; i < retransmits; i++ {
		e.enqueue(e.encodeTSDU(t))
	}
	return t, nil
}

func (e *Engine) encodeGrant(dst uint32, channel uint16, src uint32, group bool) lc.TSBK {
	if group {
		return lc.TSBK{
			LCO:       lc.OpIOSPGrpVCH,
			MFID:      lc.MFIDStandard,
			LastBlock: true,
			Payload: lc.GroupVoiceChannelGrant{
				ChannelID: 0,
				ChannelNo: channel,
				Dest:      uint16(dst),
				Source:    src,
			},
		}
	}
	return lc.TSBK{
		LCO:       lc.OpIOSPUUVCH,
		MFID:      lc.MFIDStandard,
		LastBlock: true,
		Payload: lc.UnitToUnitVoiceChannelGrant{
			ChannelID: 0,
			ChannelNo: channel,
			Dest:      dst,
			Source:    src,
		},
	}
}
