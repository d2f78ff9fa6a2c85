// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package icmpproto is the built-in ICMP protocol handler. ICMP's tuple
// endpoint is a type/code pair rather than a port pair, and it carries
// no protocol-info sub-tree. It uses golang.org/x/net/ipv4's ICMP type
// constants for Print rather than a hand-rolled name table.
package icmpproto

import (
	"fmt"
	"io"

	"golang.org/x/net/ipv4"

	"github.com/eve-net/nfconntrack/nl"
	"github.com/eve-net/nfconntrack/proto"
)

func init() {
	proto.Register(Handler{})
}

// Handler implements proto.Handler for IPPROTO_ICMP.
type Handler struct{}

func (Handler) Name() string    { return "icmp" }
func (Handler) Version() string { return proto.Version }

func (Handler) BuildTupleProto(b *nl.Builder, fields proto.L4Fields) error {
	tc, ok := fields.(proto.ICMPTypeCode)
	if !ok {
		return fmt.Errorf("icmpproto: BuildTupleProto: want proto.ICMPTypeCode, got %T", fields)
	}
	b.AppendUint8(nl.CtaProtoICMPType, tc.Type)
	b.AppendUint8(nl.CtaProtoICMPCode, tc.Code)
	return nil
}

func (Handler) BuildProtoInfo(b *nl.Builder, state proto.ProtoState) error {
	return nil
}

func (Handler) ParseTupleProto(attrs nl.AttrMap) (proto.L4Fields, error) {
	tc := proto.ICMPTypeCode{}
	if a, ok := attrs[nl.CtaProtoICMPType]; ok {
		tc.Type = a.Uint8()
	}
	if a, ok := attrs[nl.CtaProtoICMPCode]; ok {
		tc.Code = a.Uint8()
	}
	return tc, nil
}

func (Handler) ParseProtoInfo(attrs nl.AttrMap) (proto.ProtoState, error) {
	return nil, nil
}

func (Handler) PrintTuple(w io.Writer, fields proto.L4Fields) (int, error) {
	tc, ok := fields.(proto.ICMPTypeCode)
	if !ok {
		return 0, nil
	}
	// ipv4.ICMPType already knows how to render a human name for every
	// standard ICMP type.
	return fmt.Fprintf(w, "type=%s code=%d", ipv4.ICMPType(tc.Type), tc.Code)
}

func (Handler) PrintInfo(w io.Writer, state proto.ProtoState) (int, error) {
	return 0, nil
}

var _ proto.Handler = Handler{}
