// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

package nfct

import (
	"net"

	"github.com/eve-net/nfconntrack/nl"
	"github.com/eve-net/nfconntrack/proto"
)

func parseIPTuple(attrs nl.AttrMap) (src, dst net.IP, err error) {
	if a, ok := attrs[nl.CtaIPV4Src]; ok {
		src = net.IP(append([]byte(nil), a.Value...))
		if d, ok := attrs[nl.CtaIPV4Dst]; ok {
			dst = net.IP(append([]byte(nil), d.Value...))
		}
		return src, dst, nil
	}
	if a, ok := attrs[nl.CtaIPV6Src]; ok {
		src = net.IP(append([]byte(nil), a.Value...))
		if d, ok := attrs[nl.CtaIPV6Dst]; ok {
			dst = net.IP(append([]byte(nil), d.Value...))
		}
		return src, dst, nil
	}
	return nil, nil, ErrUnsupportedFamily
}

// parseProtoTuple parses a CTA_TUPLE_PROTO sub-tree. A protocol number
// with no registered handler parses into an empty proto.RawL4, rather
// than failing the whole tuple (spec §4.1, §8 scenario 5).
func parseProtoTuple(reg *proto.Registry, attrs nl.AttrMap) (protoNum uint8, l4 proto.L4Fields, err error) {
	if a, ok := attrs[nl.CtaProtoNum]; ok {
		protoNum = a.Uint8()
	}
	h, ok := reg.Lookup(proto.NameForNumber(protoNum))
	if !ok {
		return protoNum, proto.RawL4(nil), nil
	}
	fields, err := h.ParseTupleProto(attrs)
	if err != nil {
		return protoNum, nil, err
	}
	return protoNum, fields, nil
}

// ParseTuple parses a nested CTA_TUPLE_* attribute's children into a
// Tuple.
func ParseTuple(reg *proto.Registry, attr nl.Attr) (Tuple, error) {
	attrs, err := nl.ParseNested(attr)
	if err != nil {
		return Tuple{}, err
	}
	var t Tuple
	if ipAttr, ok := attrs[nl.CtaTupleIP]; ok {
		ipAttrs, err := nl.ParseNested(ipAttr)
		if err != nil {
			return Tuple{}, err
		}
		src, dst, err := parseIPTuple(ipAttrs)
		if err != nil {
			return Tuple{}, err
		}
		t.SrcIP, t.DstIP = src, dst
	}
	if protoAttr, ok := attrs[nl.CtaTupleProto]; ok {
		protoAttrs, err := nl.ParseNested(protoAttr)
		if err != nil {
			return Tuple{}, err
		}
		protoNum, l4, err := parseProtoTuple(reg, protoAttrs)
		if err != nil {
			return Tuple{}, err
		}
		t.Proto = protoNum
		t.L4 = l4
	}
	return t, nil
}

func parseCounters(attr nl.Attr) Counters {
	attrs, err := nl.ParseNested(attr)
	if err != nil {
		return Counters{}
	}
	var c Counters
	if a, ok := attrs[nl.CtaCountersPackets]; ok {
		c.Packets = a.Uint64()
	} else if a, ok := attrs[nl.CtaCounters32Packets]; ok {
		c.Packets = uint64(a.Uint32())
	}
	if a, ok := attrs[nl.CtaCountersBytes]; ok {
		c.Bytes = a.Uint64()
	} else if a, ok := attrs[nl.CtaCounters32Bytes]; ok {
		c.Bytes = uint64(a.Uint32())
	}
	return c
}

func parseNAT(attr nl.Attr) *NATRange {
	attrs, err := nl.ParseNested(attr)
	if err != nil {
		return nil
	}
	n := &NATRange{}
	if a, ok := attrs[nl.CtaNatV4MinIP]; ok {
		n.MinIP = net.IP(append([]byte(nil), a.Value...))
	}
	if a, ok := attrs[nl.CtaNatV4MaxIP]; ok {
		n.MaxIP = net.IP(append([]byte(nil), a.Value...))
	}
	if protoAttr, ok := attrs[nl.CtaNatProto]; ok {
		if protoAttrs, err := nl.ParseNested(protoAttr); err == nil {
			if a, ok := protoAttrs[nl.CtaProtoNatPortMin]; ok {
				n.MinL4 = a.Uint16()
			}
			if a, ok := protoAttrs[nl.CtaProtoNatPortMax]; ok {
				n.MaxL4 = a.Uint16()
			}
		}
	}
	return n
}

// ParseConntrack parses the attribute body of a conntrack reply
// (everything after the nlmsghdr+nfgenmsg header) into a Flow, along
// with the flags recording which optional fields were present.
func ParseConntrack(reg *proto.Registry, body []byte) (Flow, PresenceFlags, error) {
	attrs, err := nl.ParseAttributeVector(body)
	if err != nil {
		return Flow{}, 0, err
	}
	var f Flow
	var present PresenceFlags

	if a, ok := attrs[nl.CtaTupleOrig]; ok {
		t, err := ParseTuple(reg, a)
		if err != nil {
			return Flow{}, 0, err
		}
		f.Orig = t
	}
	if a, ok := attrs[nl.CtaTupleReply]; ok {
		t, err := ParseTuple(reg, a)
		if err != nil {
			return Flow{}, 0, err
		}
		f.Reply = t
	}
	if a, ok := attrs[nl.CtaStatus]; ok {
		f.Status = StatusFlags(a.Uint32())
		present |= PresentStatus
	}
	if a, ok := attrs[nl.CtaTimeout]; ok {
		f.Timeout = a.Uint32()
		present |= PresentTimeout
	}
	if a, ok := attrs[nl.CtaMark]; ok {
		f.Mark = a.Uint32()
		present |= PresentMark
	}
	if a, ok := attrs[nl.CtaUse]; ok {
		f.Use = a.Uint32()
		present |= PresentUse
	}
	if a, ok := attrs[nl.CtaID]; ok {
		f.ID = a.Uint32()
		present |= PresentID
	}
	if a, ok := attrs[nl.CtaCountersOrig]; ok {
		f.CountersOrig = parseCounters(a)
		present |= PresentCountersOrig
	}
	if a, ok := attrs[nl.CtaCountersRepl]; ok {
		f.CountersReply = parseCounters(a)
		present |= PresentCountersReply
	}
	if a, ok := attrs[nl.CtaNatSrc]; ok {
		f.NAT = parseNAT(a)
		present |= PresentNAT
	} else if a, ok := attrs[nl.CtaNatDst]; ok {
		f.NAT = parseNAT(a)
		present |= PresentNAT
	}
	if a, ok := attrs[nl.CtaProtoInfo]; ok {
		h, ok := reg.Lookup(proto.NameForNumber(f.Orig.Proto))
		if ok {
			infoAttrs, err := nl.ParseNested(a)
			if err != nil {
				return Flow{}, 0, err
			}
			state, err := h.ParseProtoInfo(infoAttrs)
			if err != nil {
				return Flow{}, 0, err
			}
			f.ProtoInfo = state
			present |= PresentProtoInfo
		}
	}
	f.Present = present
	return f, present, nil
}

// ParseExpect parses the attribute body of an expectation reply into an
// Expect.
func ParseExpect(reg *proto.Registry, body []byte) (Expect, error) {
	attrs, err := nl.ParseAttributeVector(body)
	if err != nil {
		return Expect{}, err
	}
	var e Expect
	if a, ok := attrs[nl.CtaExpectMaster]; ok {
		t, err := ParseTuple(reg, a)
		if err != nil {
			return Expect{}, err
		}
		e.Master = t
	}
	if a, ok := attrs[nl.CtaExpectTuple]; ok {
		t, err := ParseTuple(reg, a)
		if err != nil {
			return Expect{}, err
		}
		e.Expected = t
	}
	if a, ok := attrs[nl.CtaExpectMask]; ok {
		t, err := ParseTuple(reg, a)
		if err != nil {
			return Expect{}, err
		}
		e.Mask = t
	}
	if a, ok := attrs[nl.CtaExpectTimeout]; ok {
		e.Timeout = a.Uint32()
	}
	if a, ok := attrs[nl.CtaExpectID]; ok {
		e.ID = a.Uint32()
	}
	return e, nil
}
