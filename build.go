// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

package nfct

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/eve-net/nfconntrack/nl"
	"github.com/eve-net/nfconntrack/proto"
)

// buildIPTuple appends the CTA_TUPLE_IP sub-tree for one address family.
func buildIPTuple(b *nl.Builder, src, dst net.IP) error {
	m := b.Nest(nl.CtaTupleIP)
	if v4src, v4dst := src.To4(), dst.To4(); v4src != nil && v4dst != nil {
		b.Append(nl.CtaIPV4Src, v4src)
		b.Append(nl.CtaIPV4Dst, v4dst)
	} else if v6src, v6dst := src.To16(), dst.To16(); v6src != nil && v6dst != nil {
		b.Append(nl.CtaIPV6Src, v6src)
		b.Append(nl.CtaIPV6Dst, v6dst)
	} else {
		return ErrUnsupportedFamily
	}
	b.End(m)
	return nil
}

// buildProtoTuple appends the CTA_TUPLE_PROTO sub-tree: the protocol
// number the codec always writes itself, plus whatever the registered
// handler for that number contributes.
func buildProtoTuple(b *nl.Builder, reg *proto.Registry, protoNum uint8, l4 proto.L4Fields) error {
	m := b.Nest(nl.CtaTupleProto)
	b.AppendUint8(nl.CtaProtoNum, protoNum)
	if h, ok := reg.Lookup(proto.NameForNumber(protoNum)); ok && l4 != nil {
		if err := h.BuildTupleProto(b, l4); err != nil {
			return fmt.Errorf("nfct: build tuple proto %d: %w", protoNum, err)
		}
	}
	b.End(m)
	return nil
}

// BuildTuple appends a full CTA_TUPLE_ORIG/REPLY/MASTER sub-tree
// (selected by attrType) for t.
func BuildTuple(b *nl.Builder, reg *proto.Registry, attrType uint16, t Tuple) error {
	if t.SrcIP == nil || t.DstIP == nil {
		return ErrMissingTuple
	}
	m := b.Nest(attrType)
	if err := buildIPTuple(b, t.SrcIP, t.DstIP); err != nil {
		return err
	}
	if err := buildProtoTuple(b, reg, t.Proto, t.L4); err != nil {
		return err
	}
	b.End(m)
	return nil
}

// buildCounters appends a CTA_COUNTERS_ORIG/REPLY sub-tree (attrType
// selects which) using the 64-bit counter attributes; the codec never
// writes the legacy 32-bit pair (spec §9 #1).
func buildCounters(b *nl.Builder, attrType uint16, c Counters) {
	m := b.Nest(attrType)
	b.AppendUint64(nl.CtaCountersPackets, c.Packets)
	b.AppendUint64(nl.CtaCountersBytes, c.Bytes)
	b.End(m)
}

// buildNAT appends a CTA_NAT_SRC/DST sub-tree (attrType selects which).
// Only IPv4 ranges are supported; a v6 MinIP/MaxIP returns
// ErrUnsupportedFamily, matching the kernel ABI this attribute predates
// NAT66 support for. MAXIP is only written when it differs from MINIP,
// and NAT_PROTO only when the L4 range isn't a single port (spec §8
// invariant 4).
func buildNAT(b *nl.Builder, attrType uint16, n NATRange) error {
	v4min, v4max := n.MinIP.To4(), n.MaxIP.To4()
	if v4min == nil || v4max == nil {
		return ErrUnsupportedFamily
	}
	m := b.Nest(attrType)
	b.Append(nl.CtaNatV4MinIP, v4min)
	if !v4min.Equal(v4max) {
		b.Append(nl.CtaNatV4MaxIP, v4max)
	}
	if n.MinL4 != n.MaxL4 {
		pm := b.Nest(nl.CtaNatProto)
		b.AppendUint16(nl.CtaProtoNatPortMin, n.MinL4)
		b.AppendUint16(nl.CtaProtoNatPortMax, n.MaxL4)
		b.End(pm)
	}
	b.End(m)
	return nil
}

// BuildProtoInfo appends the CTA_PROTOINFO sub-tree for f's original
// tuple's protocol, if the registered handler contributes one and f
// carries protocol state.
func BuildProtoInfo(b *nl.Builder, reg *proto.Registry, f Flow) error {
	if f.ProtoInfo == nil {
		return nil
	}
	h, ok := reg.Lookup(proto.NameForNumber(f.Orig.Proto))
	if !ok {
		return nil
	}
	m := b.Nest(nl.CtaProtoInfo)
	if err := h.BuildProtoInfo(b, f.ProtoInfo); err != nil {
		return fmt.Errorf("nfct: build proto info: %w", err)
	}
	b.End(m)
	return nil
}

// BuildConntrack assembles the attribute body (everything after the
// nlmsghdr+nfgenmsg header) of a create/update request for f.
func BuildConntrack(reg *proto.Registry, f Flow) ([]byte, error) {
	b := nl.NewBuilder()
	if err := BuildTuple(b, reg, nl.CtaTupleOrig, f.Orig); err != nil {
		return nil, err
	}
	if f.Reply.SrcIP != nil {
		if err := BuildTuple(b, reg, nl.CtaTupleReply, f.Reply); err != nil {
			return nil, err
		}
	}
	if f.Status != 0 {
		b.AppendUint32(nl.CtaStatus, uint32(f.Status))
	}
	if f.Timeout != 0 {
		b.AppendUint32(nl.CtaTimeout, f.Timeout)
	}
	if f.Mark != 0 {
		b.AppendUint32(nl.CtaMark, f.Mark)
	}
	if f.ID != AnyID {
		b.AppendUint32(nl.CtaID, f.ID)
	}
	if f.CountersOrig.Packets != 0 || f.CountersOrig.Bytes != 0 {
		buildCounters(b, nl.CtaCountersOrig, f.CountersOrig)
	}
	if f.CountersReply.Packets != 0 || f.CountersReply.Bytes != 0 {
		buildCounters(b, nl.CtaCountersRepl, f.CountersReply)
	}
	if f.NAT != nil {
		if err := buildNAT(b, nl.CtaNatSrc, *f.NAT); err != nil {
			return nil, err
		}
	}
	if err := BuildProtoInfo(b, reg, f); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// BuildExpect assembles the attribute body of a create request for an
// expectation.
func BuildExpect(reg *proto.Registry, e Expect) ([]byte, error) {
	b := nl.NewBuilder()
	if err := BuildTuple(b, reg, nl.CtaExpectMaster, e.Master); err != nil {
		return nil, err
	}
	if err := BuildTuple(b, reg, nl.CtaExpectTuple, e.Expected); err != nil {
		return nil, err
	}
	if err := BuildTuple(b, reg, nl.CtaExpectMask, e.Mask); err != nil {
		return nil, err
	}
	if e.Timeout != 0 {
		b.AppendUint32(nl.CtaExpectTimeout, e.Timeout)
	}
	if e.ID != AnyID {
		b.AppendUint32(nl.CtaExpectID, e.ID)
	}
	return b.Bytes(), nil
}

// familyOf returns AF_INET or AF_INET6 for the nfgenmsg family field of
// a request built around t, defaulting to AF_INET when t carries no
// address yet (pure filter-by-protocol queries).
func familyOf(t Tuple) uint8 {
	if t.SrcIP != nil && t.SrcIP.To4() == nil {
		return unix.AF_INET6
	}
	return unix.AF_INET
}
