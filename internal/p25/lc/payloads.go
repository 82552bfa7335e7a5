package lc

func put24(buf []byte, v uint32) {
	buf[0] = byte(v >> 16)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v)
}

func get24(buf []byte) uint32 {
	return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
}

// GroupVoiceChannelGrant is the payload of IOSP_GRP_VCH: inbound, a
// group voice channel request; outbound, the assigned grant. Fields
// mirror spec.md §4.2's description of IOSP_GRP_VCH. Dest is a 16-bit
// talkgroup address and Source a 24-bit unit address, matching the
// standard Group Voice Channel Grant TSBK's field widths: Service
// Options(1) + Channel(2) + Group Address(2) + Source Address(3) = 8
// bytes.
type GroupVoiceChannelGrant struct {
	ServiceOptions byte
	ChannelID      uint8
	ChannelNo      uint16
	Dest           uint16
	Source         uint32
}

func (GroupVoiceChannelGrant) isPayload() {}

func encodeGroupVoiceChannelGrant(p Payload) [8]byte {
	g := p.(GroupVoiceChannelGrant)
	var b [8]byte
	b[0] = g.ServiceOptions
	chanField := uint16(g.ChannelID&0xF)<<12 | (g.ChannelNo & 0x0FFF)
	b[1] = byte(chanField >> 8)
	b[2] = byte(chanField)
	b[3] = byte(g.Dest >> 8)
	b[4] = byte(g.Dest)
	put24(b[5:8], g.Source)
	return b
}

func decodeGroupVoiceChannelGrant(b [8]byte) (Payload, error) {
	chanField := uint16(b[1])<<8 | uint16(b[2])
	return GroupVoiceChannelGrant{
		ServiceOptions: b[0],
		ChannelID:      uint8(chanField >> 12),
		ChannelNo:      chanField & 0x0FFF,
		Dest:           uint16(b[3])<<8 | uint16(b[4]),
		Source:         get24(b[5:8]),
	}, nil
}

// UnitToUnitVoiceChannelGrant is the payload of IOSP_UU_VCH: the
// unit-to-unit analogue of GroupVoiceChannelGrant. Both Dest and Source
// are 24-bit unit addresses, so the channel field is narrowed to fit:
// Channel(2) + Dest(3) + Source(3) = 8 bytes.
type UnitToUnitVoiceChannelGrant struct {
	ChannelID uint8
	ChannelNo uint16
	Dest      uint32
	Source    uint32
}

func (UnitToUnitVoiceChannelGrant) isPayload() {}

func encodeUUVCH(p Payload) [8]byte {
	g := p.(UnitToUnitVoiceChannelGrant)
	var b [8]byte
	chanField := uint16(g.ChannelID&0xF)<<12 | (g.ChannelNo & 0x0FFF)
	b[0] = byte(chanField >> 8)
	b[1] = byte(chanField)
	put24(b[2:5], g.Dest)
	put24(b[5:8], g.Source)
	return b
}

func decodeUUVCH(b [8]byte) (Payload, error) {
	chanField := uint16(b[0])<<8 | uint16(b[1])
	return UnitToUnitVoiceChannelGrant{
		ChannelID: uint8(chanField >> 12),
		ChannelNo: chanField & 0x0FFF,
		Dest:      get24(b[2:5]),
		Source:    get24(b[5:8]),
	}, nil
}

// GroupVoiceChannelGrantUpdate is OSP_GRP_VCH_GRANT_UPD: a late-entry
// beacon listing one currently-active group call.
type GroupVoiceChannelGrantUpdate struct {
	Dest      uint32
	ChannelID uint8
	ChannelNo uint16
}

func (GroupVoiceChannelGrantUpdate) isPayload() {}

func encodeGrantUpdate(p Payload) [8]byte {
	g := p.(GroupVoiceChannelGrantUpdate)
	var b [8]byte
	put24(b[0:3], g.Dest)
	chanField := uint16(g.ChannelID&0xF)<<12 | (g.ChannelNo & 0x0FFF)
	b[3] = byte(chanField >> 8)
	b[4] = byte(chanField)
	return b
}

func decodeGrantUpdate(b [8]byte) (Payload, error) {
	chanField := uint16(b[3])<<8 | uint16(b[4])
	return GroupVoiceChannelGrantUpdate{
		Dest:      get24(b[0:3]),
		ChannelID: uint8(chanField >> 12),
		ChannelNo: chanField & 0x0FFF,
	}, nil
}

// AdjacentSiteCFVA is the "CFVA" validity code OSP_ADJ_STS_BCAST
// carries: VALID unless the neighbor's update counter has reached zero,
// in which case FAILURE is announced instead.
type AdjacentSiteCFVA uint8

const (
	CFVAValid   AdjacentSiteCFVA = 0
	CFVAFailure AdjacentSiteCFVA = 1
)

// AdjacentSiteBroadcast is OSP_ADJ_STS_BCAST. A same-site instance (SiteID
// equal to the announcing site's own) is interpreted as a Secondary
// Control Channel announcement instead, per spec.md §4.2.
type AdjacentSiteBroadcast struct {
	CFVA      AdjacentSiteCFVA
	SystemID  uint16
	RFSSID    uint8
	SiteID    uint8
	ChannelID uint8
	ChannelNo uint16
}

func (AdjacentSiteBroadcast) isPayload() {}

func encodeAdjacentSiteBroadcast(p Payload) [8]byte {
	a := p.(AdjacentSiteBroadcast)
	var b [8]byte
	b[0] = byte(a.CFVA)
	b[1] = byte(a.SystemID >> 8)
	b[2] = byte(a.SystemID)
	b[3] = a.RFSSID
	b[4] = a.SiteID
	chanField := uint16(a.ChannelID&0xF)<<12 | (a.ChannelNo & 0x0FFF)
	b[5] = byte(chanField >> 8)
	b[6] = byte(chanField)
	return b
}

func decodeAdjacentSiteBroadcast(b [8]byte) (Payload, error) {
	chanField := uint16(b[5])<<8 | uint16(b[6])
	return AdjacentSiteBroadcast{
		CFVA:      AdjacentSiteCFVA(b[0]),
		SystemID:  uint16(b[1])<<8 | uint16(b[2]),
		RFSSID:    b[3],
		SiteID:    b[4],
		ChannelID: uint8(chanField >> 12),
		ChannelNo: chanField & 0x0FFF,
	}, nil
}

// AckResponse is IOSP_ACK_RSP. AIV=false with a nonzero destination is a
// documented field-compatibility quirk: it must be interpreted (and
// re-encoded) as inverted source/dest. Do not "fix" this — see
// spec.md §9.
type AckResponse struct {
	AIV         bool
	ServiceType byte
	Source      uint32
	Dest        uint32
}

func (AckResponse) isPayload() {}

func encodeAckResponse(p Payload) [8]byte {
	a := p.(AckResponse)
	var b [8]byte
	if a.AIV {
		b[0] = 1
	}
	b[1] = a.ServiceType
	src, dst := a.Source, a.Dest
	if !a.AIV && dst != 0 {
		src, dst = dst, src
	}
	put24(b[2:5], src)
	put24(b[5:8], dst)
	return b
}

func decodeAckResponse(b [8]byte) (Payload, error) {
	aiv := b[0] != 0
	src := get24(b[2:5])
	dst := get24(b[5:8])
	if !aiv && dst != 0 {
		src, dst = dst, src
	}
	return AckResponse{AIV: aiv, ServiceType: b[1], Source: src, Dest: dst}, nil
}

// SyncBroadcast is OSP_SYNC_BCAST, carrying a free-running 13-bit
// microslot counter that wraps at 7999.
type SyncBroadcast struct {
	Microslot uint16
}

func (SyncBroadcast) isPayload() {}

func encodeSyncBroadcast(p Payload) [8]byte {
	s := p.(SyncBroadcast)
	var b [8]byte
	v := s.Microslot % 8000
	b[0] = byte(v >> 8)
	b[1] = byte(v)
	return b
}

func decodeSyncBroadcast(b [8]byte) (Payload, error) {
	v := uint16(b[0])<<8 | uint16(b[1])
	return SyncBroadcast{Microslot: v % 8000}, nil
}

// DVMGitHash is the vendor identifier TSBK OSP_DVM_GIT_HASH.
type DVMGitHash struct {
	Hash [8]byte
}

func (DVMGitHash) isPayload() {}

func encodeDVMGitHash(p Payload) [8]byte {
	return p.(DVMGitHash).Hash
}

func decodeDVMGitHash(b [8]byte) (Payload, error) {
	return DVMGitHash{Hash: b}, nil
}

// IdentityUpdate is OSP_IDEN_UP, cycling through identity-table entries.
type IdentityUpdate struct {
	ChannelID      uint8
	BaseFrequency  uint32 // Hz, scaled
	ChannelSpacing uint16 // kHz
	TxOffset       int8   // MHz
}

func (IdentityUpdate) isPayload() {}

func encodeIdentityUpdate(p Payload) [8]byte {
	u := p.(IdentityUpdate)
	var b [8]byte
	b[0] = u.ChannelID
	b[1] = byte(u.BaseFrequency >> 24)
	b[2] = byte(u.BaseFrequency >> 16)
	b[3] = byte(u.BaseFrequency >> 8)
	b[4] = byte(u.BaseFrequency)
	b[5] = byte(u.ChannelSpacing >> 8)
	b[6] = byte(u.ChannelSpacing)
	b[7] = byte(u.TxOffset)
	return b
}

func decodeIdentityUpdate(b [8]byte) (Payload, error) {
	return IdentityUpdate{
		ChannelID:      b[0],
		BaseFrequency:  uint32(b[1])<<24 | uint32(b[2])<<16 | uint32(b[3])<<8 | uint32(b[4]),
		ChannelSpacing: uint16(b[5])<<8 | uint16(b[6]),
		TxOffset:       int8(b[7]),
	}, nil
}

// StatusBroadcast is shared by RFSS_STS_BCAST and NET_STS_BCAST — the
// control-channel signaling cycle alternates between the two opcodes
// with the same payload shape.
type StatusBroadcast struct {
	SystemID  uint16
	RFSSID    uint8
	SiteID    uint8
	ChannelID uint8
	ChannelNo uint16
}

func (StatusBroadcast) isPayload() {}

func encodeStatusBroadcast(p Payload) [8]byte {
	s := p.(StatusBroadcast)
	var b [8]byte
	b[0] = byte(s.SystemID >> 8)
	b[1] = byte(s.SystemID)
	b[2] = s.RFSSID
	b[3] = s.SiteID
	chanField := uint16(s.ChannelID&0xF)<<12 | (s.ChannelNo & 0x0FFF)
	b[4] = byte(chanField >> 8)
	b[5] = byte(chanField)
	return b
}

func decodeStatusBroadcast(b [8]byte) (Payload, error) {
	chanField := uint16(b[4])<<8 | uint16(b[5])
	return StatusBroadcast{
		SystemID:  uint16(b[0])<<8 | uint16(b[1]),
		RFSSID:    b[2],
		SiteID:    b[3],
		ChannelID: uint8(chanField >> 12),
		ChannelNo: chanField & 0x0FFF,
	}, nil
}

// SNDCPChannelAnnouncement is OSP_SNDCP_CH_ANN.
type SNDCPChannelAnnouncement struct {
	ChannelID uint8
	ChannelNo uint16
}

func (SNDCPChannelAnnouncement) isPayload() {}

func encodeSNDCPChAnn(p Payload) [8]byte {
	s := p.(SNDCPChannelAnnouncement)
	var b [8]byte
	chanField := uint16(s.ChannelID&0xF)<<12 | (s.ChannelNo & 0x0FFF)
	b[0] = byte(chanField >> 8)
	b[1] = byte(chanField)
	return b
}

func decodeSNDCPChAnn(b [8]byte) (Payload, error) {
	chanField := uint16(b[0])<<8 | uint16(b[1])
	return SNDCPChannelAnnouncement{
		ChannelID: uint8(chanField >> 12),
		ChannelNo: chanField & 0x0FFF,
	}, nil
}

// SNDCPChannelGrant is OSP_SNDCP_CH_GNT.
type SNDCPChannelGrant struct {
	Dest      uint32
	ChannelID uint8
	ChannelNo uint16
}

func (SNDCPChannelGrant) isPayload() {}

func encodeSNDCPChGnt(p Payload) [8]byte {
	s := p.(SNDCPChannelGrant)
	return encodeGrantUpdate(GroupVoiceChannelGrantUpdate{Dest: s.Dest, ChannelID: s.ChannelID, ChannelNo: s.ChannelNo})
}

func decodeSNDCPChGnt(b [8]byte) (Payload, error) {
	p, err := decodeGrantUpdate(b)
	if err != nil {
		return nil, err
	}
	g := p.(GroupVoiceChannelGrantUpdate)
	return SNDCPChannelGrant{Dest: g.Dest, ChannelID: g.ChannelID, ChannelNo: g.ChannelNo}, nil
}

// SNDCPChannelRequest is the inbound ISP_SNDCP_CH_REQ.
type SNDCPChannelRequest struct {
	Source             uint32
	DataServiceOptions byte
}

func (SNDCPChannelRequest) isPayload() {}

func encodeSNDCPChReq(p Payload) [8]byte {
	s := p.(SNDCPChannelRequest)
	var b [8]byte
	put24(b[0:3], s.Source)
	b[3] = s.DataServiceOptions
	return b
}

func decodeSNDCPChReq(b [8]byte) (Payload, error) {
	return SNDCPChannelRequest{Source: get24(b[0:3]), DataServiceOptions: b[3]}, nil
}

// UnitDeregAck is U_DEREG_ACK, which control.Engine sends in reply to an
// ISP_U_DEREG_REQ. It is not sent for affiliations removed by
// trunk.Affiliations.ClearGroupAff.
type UnitDeregAck struct {
	Source uint32
}

func (UnitDeregAck) isPayload() {}

func encodeUnitDeregAck(p Payload) [8]byte {
	var b [8]byte
	put24(b[0:3], p.(UnitDeregAck).Source)
	return b
}

func decodeUnitDeregAck(b [8]byte) (Payload, error) {
	return UnitDeregAck{Source: get24(b[0:3])}, nil
}

// UnitDeregRequest is the inbound ISP_U_DEREG_REQ.
type UnitDeregRequest struct {
	Source uint32
}

func (UnitDeregRequest) isPayload() {}

func encodeUnitDeregRequest(p Payload) [8]byte {
	var b [8]byte
	put24(b[0:3], p.(UnitDeregRequest).Source)
	return b
}

func decodeUnitDeregRequest(b [8]byte) (Payload, error) {
	return UnitDeregRequest{Source: get24(b[0:3])}, nil
}

// GroupAffiliation is IOSP_GRP_AFF, both the inbound request and the
// outbound acknowledgement share this shape.
type GroupAffiliation struct {
	Source uint32
	Dest   uint32
}

func (GroupAffiliation) isPayload() {}

func encodeGroupAffiliation(p Payload) [8]byte {
	g := p.(GroupAffiliation)
	var b [8]byte
	put24(b[0:3], g.Source)
	put24(b[3:6], g.Dest)
	return b
}

func decodeGroupAffiliation(b [8]byte) (Payload, error) {
	return GroupAffiliation{Source: get24(b[0:3]), Dest: get24(b[3:6])}, nil
}

// DenyResponse is OSP_DENY_RSP, surfacing a GrantDenied error to the air
// interface.
type DenyResponse struct {
	ServiceType byte
	ReasonCode  byte
	Source      uint32
	Dest        uint32
}

func (DenyResponse) isPayload() {}

func encodeDenyResponse(p Payload) [8]byte {
	d := p.(DenyResponse)
	var b [8]byte
	b[0] = d.ServiceType
	b[1] = d.ReasonCode
	put24(b[2:5], d.Source)
	put24(b[5:8], d.Dest)
	return b
}

func decodeDenyResponse(b [8]byte) (Payload, error) {
	return DenyResponse{
		ServiceType: b[0],
		ReasonCode:  b[1],
		Source:      get24(b[2:5]),
		Dest:        get24(b[5:8]),
	}, nil
}

// QueueResponse is OSP_QUEUE_RSP, surfacing a GrantQueued error.
type QueueResponse struct {
	ServiceType byte
	ReasonCode  byte
	Source      uint32
	Dest        uint32
}

func (QueueResponse) isPayload() {}

func encodeQueueResponse(p Payload) [8]byte {
	return encodeDenyResponse(DenyResponse(p.(QueueResponse)))
}

func decodeQueueResponse(b [8]byte) (Payload, error) {
	p, err := decodeDenyResponse(b)
	if err != nil {
		return nil, err
	}
	return QueueResponse(p.(DenyResponse)), nil
}

func init() {
	register(OpcodeKey{OpIOSPGrpVCH, MFIDStandard}, codec{decodeGroupVoiceChannelGrant, encodeGroupVoiceChannelGrant})
	register(OpcodeKey{OpIOSPUUVCH, MFIDStandard}, codec{decodeUUVCH, encodeUUVCH})
	register(OpcodeKey{OpOSPGrpVCHGrantUpd, MFIDStandard}, codec{decodeGrantUpdate, encodeGrantUpdate})
	register(OpcodeKey{OpOSPAdjStsBcast, MFIDStandard}, codec{decodeAdjacentSiteBroadcast, encodeAdjacentSiteBroadcast})
	register(OpcodeKey{OpIOSPAckRsp, MFIDStandard}, codec{decodeAckResponse, encodeAckResponse})
	register(OpcodeKey{OpOSPSyncBcast, MFIDStandard}, codec{decodeSyncBroadcast, encodeSyncBroadcast})
	register(OpcodeKey{OpOSPDVMGitHash, MFIDDVM}, codec{decodeDVMGitHash, encodeDVMGitHash})
	register(OpcodeKey{OpOSPIdenUp, MFIDStandard}, codec{decodeIdentityUpdate, encodeIdentityUpdate})
	register(OpcodeKey{OpOSPRFSSStsBcast, MFIDStandard}, codec{decodeStatusBroadcast, encodeStatusBroadcast})
	register(OpcodeKey{OpOSPNetStsBcast, MFIDStandard}, codec{decodeStatusBroadcast, encodeStatusBroadcast})
	register(OpcodeKey{OpOSPSNDCPChAnn, MFIDStandard}, codec{decodeSNDCPChAnn, encodeSNDCPChAnn})
	register(OpcodeKey{OpOSPSNDCPChGnt, MFIDStandard}, codec{decodeSNDCPChGnt, encodeSNDCPChGnt})
	register(OpcodeKey{OpISPSNDCPChReq, MFIDStandard}, codec{decodeSNDCPChReq, encodeSNDCPChReq})
	register(OpcodeKey{OpOSPUDeregAck, MFIDStandard}, codec{decodeUnitDeregAck, encodeUnitDeregAck})
	register(OpcodeKey{OpISPUDeregReq, MFIDStandard}, codec{decodeUnitDeregRequest, encodeUnitDeregRequest})
	register(OpcodeKey{OpIOSPGrpAff, MFIDStandard}, codec{decodeGroupAffiliation, encodeGroupAffiliation})
	register(OpcodeKey{OpOSPDenyRsp, MFIDStandard}, codec{decodeDenyResponse, encodeDenyResponse})
	register(OpcodeKey{OpOSPQueueRsp, MFIDStandard}, codec{decodeQueueResponse, encodeQueueResponse})
}
