// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package nfct is a userspace client for the kernel connection-tracking
// subsystem exposed over netlink (NFNL_SUBSYS_CTNETLINK /
// NFNL_SUBSYS_CTNETLINK_EXP): it lists, queries, creates, updates,
// deletes and watches flow and expectation entries.
//
// The hard part is the message codec: requests are a tree of nested TLV
// attributes with layer-4-protocol-specific sub-trees contributed by
// the proto package's handler registry, and replies parse back into the
// typed records in this file.
package nfct

import (
	"net"

	"github.com/eve-net/nfconntrack/proto"
)

// Version is this library's ABI version stamp. Every registered
// proto.Handler must report exactly this string (proto.Version is the
// canonical copy; this is a convenience alias so callers who only
// import nfct still have something to compare against).
const Version = proto.Version

// AnyID is the sentinel meaning "do not constrain by connection id".
const AnyID uint32 = 0xFFFFFFFF

// Direction selects which half of a flow's tuple pair an operation
// matches against.
type Direction uint8

const (
	DirOriginal Direction = 0
	DirReply    Direction = 1
)

// Tuple is the L3+L4 endpoint pair identifying one direction of a flow.
type Tuple struct {
	SrcIP, DstIP net.IP
	Proto        uint8
	L4           proto.L4Fields
}

// Counters is a per-direction packet/byte count. The wire form may be
// the 32-bit legacy counters or the 64-bit counters; both decode into
// this single 64-bit-wide field (spec §9 #1 — unlike the C original,
// the 32-bit path is never truncated back down on read).
type Counters struct {
	Packets, Bytes uint64
}

// NATRange describes an optional NAT remapping range attached to a
// flow.
type NATRange struct {
	MinIP, MaxIP net.IP
	MinL4, MaxL4 uint16
}

// StatusFlags are the IPS_* packed status bits (spec §3).
type StatusFlags uint32

const (
	StatusExpected     StatusFlags = 1 << 0
	StatusSeenReply    StatusFlags = 1 << 1
	StatusAssured      StatusFlags = 1 << 2
	StatusConfirmed    StatusFlags = 1 << 3
	StatusSrcNAT       StatusFlags = 1 << 4
	StatusDstNAT       StatusFlags = 1 << 5
	StatusSeqAdjust    StatusFlags = 1 << 6
	StatusSrcNATDone   StatusFlags = 1 << 7
	StatusDstNATDone   StatusFlags = 1 << 8
	StatusDying        StatusFlags = 1 << 9
	StatusFixedTimeout StatusFlags = 1 << 10
	StatusTemplate     StatusFlags = 1 << 11
	StatusHelper       StatusFlags = 1 << 13
	StatusOffload      StatusFlags = 1 << 14
	StatusHwOffload    StatusFlags = 1 << 15
)

// Has reports whether every bit in want is set in f.
func (f StatusFlags) Has(want StatusFlags) bool {
	return f&want == want
}

// PresenceFlags records which optional fields the parser actually found
// in the last message it parsed, so a caller can tell "present and
// zero" from "absent" (spec §4.2, §8 invariant 5). This is the typed
// reimplementation's concession to the C ABI's flags bitmask argument
// (Design Notes): every Flow field that doesn't have its own "ok" is
// covered by one of these bits.
type PresenceFlags uint32

const (
	PresentStatus PresenceFlags = 1 << iota
	PresentProtoInfo
	PresentTimeout
	PresentMark
	PresentCountersOrig
	PresentCountersReply
	PresentUse
	PresentID
	PresentNAT
)

func (f PresenceFlags) Has(want PresenceFlags) bool {
	return f&want == want
}

// Flow is the kernel's conntrack entry as seen by userspace (spec §3).
type Flow struct {
	Orig, Reply   Tuple
	ProtoInfo     proto.ProtoState
	Status        StatusFlags
	Timeout       uint32
	Mark          uint32
	Use           uint32
	CountersOrig  Counters
	CountersReply Counters
	ID            uint32
	NAT           *NATRange

	// Present records which of the above optional fields (everything
	// but Orig/Reply: Orig is required on every build, Reply is built
	// when its SrcIP is set, and both are always attempted on every
	// parse) were actually found by the last Parse call that populated
	// this Flow.
	Present PresenceFlags
}

// Expect is a template a stateful protocol helper has registered for a
// flow it anticipates (spec §3).
type Expect struct {
	Master   Tuple
	Expected Tuple
	Mask     Tuple
	Timeout  uint32
	ID       uint32
}

// Kind classifies a parsed flow reply by its netlink message type and
// flags (spec §4.3).
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNew
	KindUpdate
	KindDestroy
)

func (k Kind) String() string {
	switch k {
	case KindNew:
		return "new"
	case KindUpdate:
		return "update"
	case KindDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// FlowCallback is invoked once per parsed flow reply during a drain
// (get/dump/watch) operation. userData is whatever the caller passed to
// the originating operation. A non-zero return value stops the drain
// (spec §4.3).
type FlowCallback func(flow Flow, present PresenceFlags, kind Kind, userData any) int

// ExpectCallback is the Expect analogue of FlowCallback. Expectations
// carry no message-kind distinction in the kernel ABI.
type ExpectCallback func(exp Expect, userData any) int
