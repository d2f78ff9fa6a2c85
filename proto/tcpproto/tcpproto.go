// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package tcpproto is the built-in TCP protocol handler: it contributes
// source/destination ports to a tuple and TCP state/window-scale to a
// flow's protocol info. It registers itself into the default registry
// from init(), matching the Design Notes' "static registration at link
// time is sufficient for the shipped protocols."
package tcpproto

import (
	"fmt"
	"io"

	"github.com/eve-net/nfconntrack/nl"
	"github.com/eve-net/nfconntrack/proto"
)

func init() {
	proto.Register(Handler{})
}

// Handler implements proto.Handler for IPPROTO_TCP.
type Handler struct{}

func (Handler) Name() string    { return "tcp" }
func (Handler) Version() string { return proto.Version }

// Info is the TCP-specific portion of a flow's connection state,
// satisfying proto.ProtoState.
type Info struct {
	State              uint8
	WScaleOrig         uint8
	WScaleReply        uint8
	HaveWScaleOrig     bool
	HaveWScaleReply    bool
}

func (*Info) isProtoState() {}

func (Handler) BuildTupleProto(b *nl.Builder, fields proto.L4Fields) error {
	pp, ok := fields.(proto.PortPair)
	if !ok {
		return fmt.Errorf("tcpproto: BuildTupleProto: want proto.PortPair, got %T", fields)
	}
	b.AppendUint16(nl.CtaProtoSrcPort, pp.Src)
	b.AppendUint16(nl.CtaProtoDstPort, pp.Dst)
	return nil
}

func (Handler) BuildProtoInfo(b *nl.Builder, state proto.ProtoState) error {
	info, ok := state.(*Info)
	if !ok || info == nil {
		return nil
	}
	m := b.Nest(nl.CtaProtoInfoTCP)
	b.AppendUint8(nl.CtaProtoInfoTCPState, info.State)
	if info.HaveWScaleOrig {
		b.AppendUint8(nl.CtaProtoInfoTCPWScaleOrig, info.WScaleOrig)
	}
	if info.HaveWScaleReply {
		b.AppendUint8(nl.CtaProtoInfoTCPWScaleReply, info.WScaleReply)
	}
	b.End(m)
	return nil
}

func (Handler) ParseTupleProto(attrs nl.AttrMap) (proto.L4Fields, error) {
	pp := proto.PortPair{}
	if a, ok := attrs[nl.CtaProtoSrcPort]; ok {
		pp.Src = a.Uint16()
	}
	if a, ok := attrs[nl.CtaProtoDstPort]; ok {
		pp.Dst = a.Uint16()
	}
	return pp, nil
}

func (Handler) ParseProtoInfo(attrs nl.AttrMap) (proto.ProtoState, error) {
	tcpAttr, ok := attrs[nl.CtaProtoInfoTCP]
	if !ok {
		return nil, nil
	}
	nested, err := nl.ParseNested(tcpAttr)
	if err != nil {
		return nil, err
	}
	info := &Info{}
	if a, ok := nested[nl.CtaProtoInfoTCPState]; ok {
		info.State = a.Uint8()
	}
	if a, ok := nested[nl.CtaProtoInfoTCPWScaleOrig]; ok {
		info.WScaleOrig = a.Uint8()
		info.HaveWScaleOrig = true
	}
	if a, ok := nested[nl.CtaProtoInfoTCPWScaleReply]; ok {
		info.WScaleReply = a.Uint8()
		info.HaveWScaleReply = true
	}
	return info, nil
}

func (Handler) PrintTuple(w io.Writer, fields proto.L4Fields) (int, error) {
	pp, ok := fields.(proto.PortPair)
	if !ok {
		return 0, nil
	}
	return fmt.Fprintf(w, "sport=%d dport=%d", pp.Src, pp.Dst)
}

// tcpStateNames mirrors the kernel's TCP_CONNTRACK_* enum order
// (net/netfilter/nf_conntrack_proto_tcp.c).
var tcpStateNames = []string{
	"NONE", "SYN_SENT", "SYN_RECV", "ESTABLISHED", "FIN_WAIT",
	"CLOSE_WAIT", "LAST_ACK", "TIME_WAIT", "CLOSE", "LISTEN",
}

func (Handler) PrintInfo(w io.Writer, state proto.ProtoState) (int, error) {
	info, ok := state.(*Info)
	if !ok || info == nil {
		return 0, nil
	}
	name := "UNKNOWN"
	if int(info.State) < len(tcpStateNames) {
		name = tcpStateNames[info.State]
	}
	return fmt.Fprintf(w, "[%s]", name)
}

var _ proto.Handler = Handler{}
