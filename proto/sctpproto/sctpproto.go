// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package sctpproto is the built-in SCTP protocol handler: ports like
// TCP/UDP, plus an association state and per-direction verification
// tags in its protocol info.
package sctpproto

import (
	"fmt"
	"io"

	"github.com/eve-net/nfconntrack/nl"
	"github.com/eve-net/nfconntrack/proto"
)

func init() {
	proto.Register(Handler{})
}

// Handler implements proto.Handler for IPPROTO_SCTP.
type Handler struct{}

func (Handler) Name() string    { return "sctp" }
func (Handler) Version() string { return proto.Version }

// Info is the SCTP-specific portion of a flow's connection state.
type Info struct {
	State     uint8
	VTagOrig  uint32
	VTagReply uint32
}

func (*Info) isProtoState() {}

func (Handler) BuildTupleProto(b *nl.Builder, fields proto.L4Fields) error {
	pp, ok := fields.(proto.PortPair)
	if !ok {
		return fmt.Errorf("sctpproto: BuildTupleProto: want proto.PortPair, got %T", fields)
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
	m := b.Nest(nl.CtaProtoInfoSCTP)
	b.AppendUint8(nl.CtaProtoInfoSCTPState, info.State)
	b.AppendUint32(nl.CtaProtoInfoSCTPVtagOrig, info.VTagOrig)
	b.AppendUint32(nl.CtaProtoInfoSCTPVtagReply, info.VTagReply)
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
	sctpAttr, ok := attrs[nl.CtaProtoInfoSCTP]
	if !ok {
		return nil, nil
	}
	nested, err := nl.ParseNested(sctpAttr)
	if err != nil {
		return nil, err
	}
	info := &Info{}
	if a, ok := nested[nl.CtaProtoInfoSCTPState]; ok {
		info.State = a.Uint8()
	}
	if a, ok := nested[nl.CtaProtoInfoSCTPVtagOrig]; ok {
		info.VTagOrig = a.Uint32()
	}
	if a, ok := nested[nl.CtaProtoInfoSCTPVtagReply]; ok {
		info.VTagReply = a.Uint32()
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

func (Handler) PrintInfo(w io.Writer, state proto.ProtoState) (int, error) {
	info, ok := state.(*Info)
	if !ok || info == nil {
		return 0, nil
	}
	return fmt.Fprintf(w, "[state=%d]", info.State)
}

var _ proto.Handler = Handler{}
