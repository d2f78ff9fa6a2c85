// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package proto is the layer-4 protocol handler registry: a process-wide
// table mapping a canonical protocol name to a small interface of
// build/parse/print routines, loaded either by static registration at
// link time (the shipped protocols, see proto/tcpproto et al.) or by
// loading a Go plugin from a search directory (out-of-tree protocols).
//
// Design Notes: the C original expresses this as an intrusive linked
// list of function-pointer structs. Here it is a table of a small
// interface, and the fixed-size L4 union the C original reserves per
// tuple is replaced by the L4Fields/ProtoState sum types below.
package proto

import (
	"io"

	"github.com/eve-net/nfconntrack/nl"
)

// Version is the ABI version stamp every registered Handler must match
// exactly. A mismatch is a hard, unrecoverable error (spec §4.1): it
// means a plugin was built against a different protocol-handler
// contract than this binary and could otherwise corrupt messages
// silently.
const Version = "1.0"

// L4Fields is the protocol-specific portion of a tuple's layer-4
// endpoint pair. Concrete types satisfy it from this package (PortPair,
// ICMPTypeCode, RawL4) or from a handler's own package.
type L4Fields interface {
	isL4Fields()
}

// ProtoState is the protocol-specific portion of a flow's connection
// state (e.g. TCP state machine position). Handlers that have no
// interesting state (ICMP) simply never populate it; ProtoState may be
// nil on a Flow.
type ProtoState interface {
	isProtoState()
}

// PortPair is the L4Fields shape shared by every simple port-addressed
// transport protocol (TCP, UDP, SCTP).
type PortPair struct {
	Src, Dst uint16
}

func (PortPair) isL4Fields() {}

// ICMPTypeCode is the L4Fields shape for ICMP, which has no ports.
type ICMPTypeCode struct {
	Type, Code uint8
}

func (ICMPTypeCode) isL4Fields() {}

// RawL4 is the fallback L4Fields for a protocol number with no
// registered handler: the codec leaves it empty rather than guessing a
// shape (spec §4.1, §8 scenario 5).
type RawL4 []byte

func (RawL4) isL4Fields() {}

// Handler is the contract a layer-4 protocol plugs into the registry.
// Any method may be a no-op for protocols with nothing to contribute
// (e.g. ICMP has no ProtoInfo).
type Handler interface {
	// Name is the canonical lowercase protocol name this handler is
	// registered under ("tcp", "udp", "icmp", "sctp", ...).
	Name() string
	// Version must equal proto.Version; Register aborts the process if
	// it does not.
	Version() string

	// BuildTupleProto appends this protocol's attributes under
	// CTA_TUPLE_PROTO (everything past CTA_PROTO_NUM, which the codec
	// always writes itself).
	BuildTupleProto(b *nl.Builder, fields L4Fields) error
	// BuildProtoInfo appends this protocol's CTA_PROTOINFO sub-tree, if
	// it chooses to contribute one.
	BuildProtoInfo(b *nl.Builder, state ProtoState) error
	// ParseTupleProto parses the CTA_TUPLE_PROTO children (beyond
	// CTA_PROTO_NUM) into an L4Fields value.
	ParseTupleProto(attrs nl.AttrMap) (L4Fields, error)
	// ParseProtoInfo parses a CTA_PROTOINFO sub-tree into a ProtoState
	// value.
	ParseProtoInfo(attrs nl.AttrMap) (ProtoState, error)

	// PrintTuple and PrintInfo render this protocol's portion of a
	// one-line flow summary (spec §4.5). They write through the
	// supplied io.Writer and return the byte count written, the same
	// contract format.FormatFlow uses for the generic portion.
	PrintTuple(w io.Writer, fields L4Fields) (int, error)
	PrintInfo(w io.Writer, state ProtoState) (int, error)
}
