// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package udpproto is the built-in UDP protocol handler. UDP has no
// connection state worth tracking beyond the generic flow fields, so
// BuildProtoInfo/ParseProtoInfo are no-ops.
package udpproto

import (
	"fmt"
	"io"

	"github.com/eve-net/nfconntrack/nl"
	"github.com/eve-net/nfconntrack/proto"
)

func init() {
	proto.Register(Handler{})
}

// Handler implements proto.Handler for IPPROTO_UDP.
type Handler struct{}

func (Handler) Name() string    { return "udp" }
func (Handler) Version() string { return proto.Version }

func (Handler) BuildTupleProto(b *nl.Builder, fields proto.L4Fields) error {
	pp, ok := fields.(proto.PortPair)
	if !ok {
		return fmt.Errorf("udpproto: BuildTupleProto: want proto.PortPair, got %T", fields)
	}
	b.AppendUint16(nl.CtaProtoSrcPort, pp.Src)
	b.AppendUint16(nl.CtaProtoDstPort, pp.Dst)
	return nil
}

func (Handler) BuildProtoInfo(b *nl.Builder, state proto.ProtoState) error {
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
	return nil, nil
}

func (Handler) PrintTuple(w io.Writer, fields proto.L4Fields) (int, error) {
	pp, ok := fields.(proto.PortPair)
	if !ok {
		return 0, nil
	}
	return fmt.Fprintf(w, "sport=%d dport=%d", pp.Src, pp.Dst)
}

func (Handler) PrintInfo(w io.Writer, state proto.ProtoState) (int, error) {
	return 0, nil
}

var _ proto.Handler = Handler{}
