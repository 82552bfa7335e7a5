// Package lc implements the Link Control / TSBK / AMBT / TDULC factory:
// the trunking signaling block zoo of spec.md §4.2/§6, keyed by LCO+MFID,
// materializing typed variants from a raw 12-byte buffer or producing one
// for outbound transmission. Grounded in shape on the teacher's
// dispatch-by-constant style (internal/dmr/dmrconst/const.go's Command
// type and HBRP's command-prefix switch), since no example repository
// implements the P25 TSBK catalog itself (see DESIGN.md).
package lc

// Opcode is the 6-bit LCO (opcode) field.
type Opcode uint8

// MFID is the 8-bit manufacturer ID field. 0x00 is the standard P25
// manufacturer ID; nonzero values select a vendor-specific opcode space.
type MFID uint8

const MFIDStandard MFID = 0x00
const MFIDDVM MFID = 0x99 // vendor ID used by OSP_DVM_GIT_HASH
const MFIDMotorola MFID = 0x90

// The opcode catalog. Values are assigned sequentially from 1, so every
// catalog entry, inbound (ISP) and outbound (OSP) alike, is a distinct
// Opcode.
const (
	// Voice channel grant / update, group and unit-to-unit.
	OpIOSPGrpVCH       Opcode = iota + 1 // IOSP_GRP_VCH: group voice channel request/grant
	OpOSPGrpVCHGrantUpd                  // OSP_GRP_VCH_GRANT_UPD
	OpIOSPUUVCH                          // IOSP_UU_VCH: unit-to-unit voice channel request/grant
	OpOSPUUVCHGrantUpd                   // OSP_UU_VCH_GRANT_UPD

	// Unit answer request/response.
	OpOSPUUAnsReq
	OpISPUUAnsRsp

	// SNDCP data channel grant.
	OpISPSNDCPChReq  // SNDCP_CH_REQ
	OpOSPSNDCPChGnt  // OSP_SNDCP_CH_GNT
	OpOSPSNDCPChAnn  // OSP_SNDCP_CH_ANN

	// Status/message update.
	OpOSPStatusUpdate
	OpOSPMessageUpdate

	// Radio monitor / call alert.
	OpOSPRadioMonitor
	OpOSPCallAlert

	// Acknowledge / deny / queue.
	OpIOSPAckRsp // IOSP_ACK_RSP
	OpOSPDenyRsp // OSP_DENY_RSP
	OpOSPQueueRsp

	// Cancel service.
	OpISPCancelService

	// Extended function: check, inhibit, uninhibit.
	OpOSPExtFuncCheck
	OpOSPExtFuncInhibit
	OpOSPExtFuncUninhibit

	// Emergency alarm.
	OpISPEmergencyAlarm

	// Group affiliation query/response/request.
	OpOSPGrpAffQuery
	OpISPGrpAffRsp
	OpIOSPGrpAff // IOSP_GRP_AFF

	// Unit/location registration and deregistration.
	OpISPUnitRegReq
	OpOSPUnitRegRsp
	OpISPUDeregReq // ISP_U_DEREG_REQ
	OpOSPUDeregAck // U_DEREG_ACK
	OpISPLocRegReq
	OpOSPLocRegRsp

	// LLA authentication demand/response.
	OpOSPAuthDemand
	OpISPAuthResp
	OpOSPAuthFTDemand
	OpISPAuthFTResp

	// Control-channel broadcasts.
	OpOSPIdenUp       // OSP_IDEN_UP
	OpOSPRFSSStsBcast // RFSS_STS_BCAST
	OpOSPNetStsBcast  // NET_STS_BCAST
	OpOSPAdjStsBcast  // OSP_ADJ_STS_BCAST
	OpOSPSCCBBcast    // SCCB broadcast
	OpOSPSyncBcast    // OSP_SYNC_BCAST
	OpOSPTimeDateAnn  // time/date announcement

	// Vendor TSBKs.
	OpOSPMotPSHCCH   // Motorola PSH_CCH
	OpOSPMotCCBSI    // Motorola CC_BSI
	OpOSPDVMGitHash  // OSP_DVM_GIT_HASH

	opcodeCatalogEnd
)

// OpcodeKey uniquely identifies a TSBK variant by LCO+MFID, the factory's
// dispatch key.
type OpcodeKey struct {
	LCO  Opcode
	MFID MFID
}

// CatalogSize reports the number of distinct opcodes registered, used by
// tests asserting the catalog's completeness. The catalog holds 44
// opcodes.
func CatalogSize() int {
	return int(opcodeCatalogEnd) - 1
}
