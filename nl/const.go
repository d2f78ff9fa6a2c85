// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package nl implements the raw netlink transport primitives the
// connection-tracking codec builds on: socket framing, nested TLV
// assembly and disassembly, and the send/talk/listen request shapes.
// Nothing in this package knows about conntrack; it only knows about
// netlink and the netfilter subsystem header.
package nl

// Netfilter subsystem identifiers (NFNL_SUBSYS_*). Fixed by the kernel
// ABI in include/uapi/linux/netfilter/nfnetlink.h.
const (
	SubsysCTNetlink    = 1
	SubsysCTNetlinkExp = 2
)

// Netfilter protocol version carried in every nfgenmsg header.
const NFNetlinkV0 = 0

// IPCTNL_MSG_CT_* — conntrack subsystem message subtypes.
const (
	MsgCtNew           = 0
	MsgCtGet           = 1
	MsgCtDelete        = 2
	MsgCtGetCtrZero    = 3
	MsgCtGetStatsCPU   = 4
	MsgCtGetStats      = 5
	MsgCtGetDying      = 6
	MsgCtGetUnconfirmed = 7
)

// IPCTNL_MSG_EXP_* — expectation subsystem message subtypes.
const (
	MsgExpGet         = 1
	MsgExpNew         = 0
	MsgExpDelete      = 2
	MsgExpGetStatsCPU = 3
)

// Standard netlink message flags (linux/netlink.h). Re-declared here,
// as every Go netlink client does, rather than imported from a header.
const (
	NLMFRequest = 0x1
	NLMFMulti   = 0x2
	NLMFAck     = 0x4
	NLMFEcho    = 0x8

	NLMFRoot   = 0x100
	NLMFMatch  = 0x200
	NLMFAtomic = 0x400
	NLMFDump   = NLMFRoot | NLMFMatch

	NLMFReplace = 0x100
	NLMFExcl    = 0x200
	NLMFCreate  = 0x400
	NLMFAppend  = 0x800
)

// Standard netlink message types.
const (
	NLMsgNoop    = 0x1
	NLMsgError   = 0x2
	NLMsgDone    = 0x3
	NLMsgOverrun = 0x4
)

// Attribute nesting/byte-order bits (linux/netlink.h NLA_F_*).
const (
	AttrFNested       = 0x8000
	AttrFNetByteorder = 0x4000
	attrTypeMask      = ^uint16(AttrFNested | AttrFNetByteorder)
	attrAlignTo       = 4
)

// CTA_* — top-level conntrack attributes
// (include/uapi/linux/netfilter/nfnetlink_conntrack.h).
const (
	CtaTupleOrig    = 1
	CtaTupleReply   = 2
	CtaStatus       = 3
	CtaProtoInfo    = 4
	CtaHelp         = 5
	CtaNatSrc       = 6
	CtaTimeout      = 7
	CtaMark         = 8
	CtaCountersOrig = 9
	CtaCountersRepl = 10
	CtaUse          = 11
	CtaID           = 12
	CtaNatDst       = 13
	CtaTupleMaster  = 14
	CtaTimestamp    = 20
)

// CTA_TUPLE_* — nested inside CTA_TUPLE_ORIG/REPLY/MASTER.
const (
	CtaTupleIP    = 1
	CtaTupleProto = 2
	CtaTupleZone  = 3
)

// CTA_IP_* — nested inside CTA_TUPLE_IP.
const (
	CtaIPV4Src = 1
	CtaIPV4Dst = 2
	CtaIPV6Src = 3
	CtaIPV6Dst = 4
)

// CTA_PROTO_* — nested inside CTA_TUPLE_PROTO.
const (
	CtaProtoNum        = 1
	CtaProtoSrcPort    = 2
	CtaProtoDstPort    = 3
	CtaProtoICMPID     = 4
	CtaProtoICMPType   = 5
	CtaProtoICMPCode   = 6
	CtaProtoICMPv6ID   = 7
	CtaProtoICMPv6Type = 8
	CtaProtoICMPv6Code = 9
)

// CTA_PROTOINFO_* — nested inside CTA_PROTOINFO.
const (
	CtaProtoInfoTCP  = 1
	CtaProtoInfoDCCP = 2
	CtaProtoInfoSCTP = 3
)

// CTA_PROTOINFO_TCP_* — nested inside CTA_PROTOINFO_TCP.
const (
	CtaProtoInfoTCPState        = 1
	CtaProtoInfoTCPWScaleOrig   = 2
	CtaProtoInfoTCPWScaleReply  = 3
	CtaProtoInfoTCPFlagsOrig    = 4
	CtaProtoInfoTCPFlagsReply   = 5
)

// CTA_PROTOINFO_SCTP_* — nested inside CTA_PROTOINFO_SCTP.
const (
	CtaProtoInfoSCTPState       = 1
	CtaProtoInfoSCTPVtagOrig    = 2
	CtaProtoInfoSCTPVtagReply   = 3
)

// CTA_COUNTERS_* — nested inside CTA_COUNTERS_ORIG/REPLY.
const (
	CtaCountersPackets   = 1
	CtaCountersBytes     = 2
	CtaCounters32Packets = 3
	CtaCounters32Bytes   = 4
)

// CTA_NAT_* — nested inside CTA_NAT_SRC/DST.
const (
	CtaNatV4MinIP = 1
	CtaNatV4MaxIP = 2
	CtaNatProto   = 3
)

// CTA_PROTONAT_* — nested inside CTA_NAT_PROTO.
const (
	CtaProtoNatPortMin = 1
	CtaProtoNatPortMax = 2
)

// CTA_EXPECT_* — top-level expectation attributes.
const (
	CtaExpectMaster  = 1
	CtaExpectTuple   = 2
	CtaExpectMask    = 3
	CtaExpectTimeout = 4
	CtaExpectID      = 5
)

// IPS_* — conntrack status bits (nf_conntrack_common.h).
const (
	IPSExpected     = 1 << 0
	IPSSeenReply    = 1 << 1
	IPSAssured      = 1 << 2
	IPSConfirmed    = 1 << 3
	IPSSrcNat       = 1 << 4
	IPSDstNat       = 1 << 5
	IPSSeqAdjust    = 1 << 6
	IPSSrcNatDone   = 1 << 7
	IPSDstNatDone   = 1 << 8
	IPSDying        = 1 << 9
	IPSFixedTimeout = 1 << 10
	IPSTemplate     = 1 << 11
	IPSHelper       = 1 << 13
	IPSOffload      = 1 << 14
	IPSHwOffload    = 1 << 15
)

// AnyID is the sentinel meaning "do not constrain by connection id".
const AnyID uint32 = 0xFFFFFFFF

func alignAttrLen(l int) int {
	return (l + attrAlignTo - 1) &^ (attrAlignTo - 1)
}
