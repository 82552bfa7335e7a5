package control

import (
	"time"

	"github.com/keystone-rf/p25ctrl/internal/p25/lc"
	"github.com/keystone-rf/p25ctrl/internal/p25/trunk"
)

// Tick advances all timers and, when running as a control channel,
// emits one step of the control-channel signaling cycle, per
// spec.md §4.3.
func (e *Engine) Tick(now time.Time) {
	e.Grants.ExpireOlderThan(now)
	for dst, dl := range e.hangDeadline {
		if now.After(dl) {
			delete(e.hangDeadline, dst)
			delete(e.lastTalker, dst)
		}
	}
	e.Adjacent.Tick()
	e.SNDCP.Tick(now)

	if !e.IsControlChannel {
		return
	}
	if e.interrupt {
		// The engine may be interrupted mid-cycle by any inbound DUID
		// other than TSDU; consume the flag and skip this tick's
		// scheduled signaling rather than collide with live traffic.
		e.interrupt = false
		e.advanceCycle()
		return
	}

	tsbks := e.cycleStep()
	e.periodicInserts()
	if len(tsbks) > 0 {
		e.enqueue(e.encodeMBF(tsbks))
	}
	e.advanceCycle()
}

func (e *Engine) advanceCycle() {
	e.tickN++
	if e.tickN > 8 {
		e.tickN = 0
		e.frameCnt++
	}
}

// cycleStep produces the TSBKs scheduled for the current sequence
// number n, per spec.md §4.3's cycle table.
func (e *Engine) cycleStep() []lc.TSBK {
	switch e.tickN {
	case 0:
		return e.identityUpdateStep()
	case 1, 2, 3:
		return e.statusBroadcastStep()
	case 4:
		return []lc.TSBK{e.syncBroadcastTSBK()}
	case 5:
		return e.grantUpdateStep()
	case 6:
		return []lc.TSBK{{
			LCO:  lc.OpOSPSNDCPChAnn,
			MFID: lc.MFIDStandard,
			Payload: lc.SNDCPChannelAnnouncement{
				ChannelID: e.Site.ChannelID,
				ChannelNo: e.Site.ChannelNo,
			},
		}}
	case 7:
		return e.adjacentStep()
	case 8:
		return e.sccbStep()
	default:
		return nil
	}
}

func (e *Engine) identityUpdateStep() []lc.TSBK {
	channels := e.Identities.Channels()
	if len(channels) == 0 {
		return nil
	}
	idx := e.frameCnt % len(channels)
	entry, ok := e.Identities.Get(channels[idx])
	if !ok {
		return nil
	}
	return []lc.TSBK{{
		LCO:  lc.OpOSPIdenUp,
		MFID: lc.MFIDStandard,
		Payload: lc.IdentityUpdate{
			ChannelID:      entry.ChannelID,
			BaseFrequency:  uint32(entry.BaseFrequency),
			ChannelSpacing: uint16(entry.ChannelSpacing),
			TxOffset:       int8(entry.TxOffset),
		},
	}}
}

// statusBroadcastStep alternates RFSS_STS_BCAST and NET_STS_BCAST with
// the parity of frameCnt+tickN, so the n=1/2/3 cycle rows alternate within
// a frame and the starting opcode flips from one frame to the next.
func (e *Engine) statusBroadcastStep() []lc.TSBK {
	lco := lc.OpOSPRFSSStsBcast
	if (e.frameCnt+e.tickN)%2 == 1 {
		lco = lc.OpOSPNetStsBcast
	}
	return []lc.TSBK{{
		LCO:  lco,
		MFID: lc.MFIDStandard,
		Payload: lc.StatusBroadcast{
			SystemID:  e.Site.SystemID,
			RFSSID:    e.Site.RFSSID,
			SiteID:    e.Site.SiteID,
			ChannelID: e.Site.ChannelID,
			ChannelNo: e.Site.ChannelNo,
		},
	}}
}

func (e *Engine) syncBroadcastTSBK() lc.TSBK {
	microslot := uint16((e.frameCnt * 9) % 8000)
	return lc.TSBK{
		LCO:     lc.OpOSPSyncBcast,
		MFID:    lc.MFIDStandard,
		Payload: lc.SyncBroadcast{Microslot: microslot},
	}
}

// grantUpdateStep emits one OSP_GRP_VCH_GRANT_UPD per tick, round-robin
// over the live grant set, iff any grants exist.
func (e *Engine) grantUpdateStep() []lc.TSBK {
	var dests []uint32
	e.Grants.Range(func(dst uint32, _ trunk.GrantRecord) bool {
		dests = append(dests, dst)
		return true
	})
	if len(dests) == 0 {
		return nil
	}
	idx := e.grantRRIndex % len(dests)
	e.grantRRIndex++
	dst := dests[idx]
	rec, ok := e.Grants.Get(dst)
	if !ok {
		return nil
	}
	return []lc.TSBK{{
		LCO:  lc.OpOSPGrpVCHGrantUpd,
		MFID: lc.MFIDStandard,
		Payload: lc.GroupVoiceChannelGrantUpdate{
			Dest:      dst,
			ChannelID: 0,
			ChannelNo: rec.Channel,
		},
	}}
}

// adjacentStep emits one neighbor advertisement, round-robin, if any.
func (e *Engine) adjacentStep() []lc.TSBK {
	neighbors := e.Adjacent.Neighbors()
	if len(neighbors) == 0 {
		return nil
	}
	idx := e.adjRRIndex % len(neighbors)
	e.adjRRIndex++
	id := neighbors[idx]
	s, ok := e.Adjacent.Get(id)
	if !ok {
		return nil
	}
	cfva := lc.CFVAValid
	if e.Adjacent.Failed(id) {
		cfva = lc.CFVAFailure
	}
	return []lc.TSBK{{
		LCO:  lc.OpOSPAdjStsBcast,
		MFID: lc.MFIDStandard,
		Payload: lc.AdjacentSiteBroadcast{
			CFVA:      cfva,
			SystemID:  s.SystemID,
			RFSSID:    s.RFSSID,
			SiteID:    s.SiteID,
			ChannelID: s.ChannelID,
			ChannelNo: s.ChannelNo,
		},
	}}
}

// sccbStep emits one Secondary Control Channel Broadcast, round-robin,
// if any — a same-site-as-self AdjacentSiteBroadcast entry is the SCCB
// signal per spec.md §4.2's OSP_ADJ_STS_BCAST note.
func (e *Engine) sccbStep() []lc.TSBK {
	for _, id := range e.Adjacent.Neighbors() {
		s, ok := e.Adjacent.Get(id)
		if ok && s.SiteID == e.Site.SiteID {
			return []lc.TSBK{{
				LCO:  lc.OpOSPSCCBBcast,
				MFID: lc.MFIDStandard,
				Payload: lc.StatusBroadcast{
					SystemID:  s.SystemID,
					RFSSID:    s.RFSSID,
					SiteID:    s.SiteID,
					ChannelID: s.ChannelID,
					ChannelNo: s.ChannelNo,
				},
			}}
		}
	}
	return nil
}

// periodicInserts queues the frame-count-gated periodic broadcasts once
// per frame, on its first tick: time/date every 64 frames, vendor BSI
// every 127, Git-hash every 125, and an extra RFSS status broadcast TSDU
// every 254 frames. Nothing is sent to the peer network on the 254-frame
// period.
func (e *Engine) periodicInserts() {
	if e.tickN != 0 {
		return
	}
	if e.frameCnt%64 == 0 {
		e.enqueue(e.encodeTSDU(lc.TSBK{LCO: lc.OpOSPTimeDateAnn, MFID: lc.MFIDStandard, LastBlock: true}))
	}
	if e.frameCnt%127 == 0 {
		e.enqueue(e.encodeTSDU(lc.TSBK{LCO: lc.OpOSPMotCCBSI, MFID: lc.MFIDMotorola, LastBlock: true}))
	}
	if e.frameCnt%125 == 0 {
		e.enqueue(e.encodeTSDU(lc.TSBK{LCO: lc.OpOSPDVMGitHash, MFID: lc.MFIDDVM, LastBlock: true, Payload: lc.DVMGitHash{}}))
	}
	if e.frameCnt%254 == 0 {
		e.enqueue(e.encodeTSDU(e.fillerTSBK()))
	}
}
