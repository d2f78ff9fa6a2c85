// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

package nfct

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eve-net/nfconntrack/nl"
	"github.com/eve-net/nfconntrack/proto"
	"github.com/eve-net/nfconntrack/proto/tcpproto"
)

func testRegistry() *proto.Registry {
	r := proto.NewRegistry("")
	r.Register(tcpproto.Handler{})
	return r
}

func TestBuildTupleRoundTrip(t *testing.T) {
	reg := testRegistry()
	tuple := Tuple{
		SrcIP: net.ParseIP("10.1.1.1"),
		DstIP: net.ParseIP("10.1.1.2"),
		Proto: 6,
		L4:    proto.PortPair{Src: 1234, Dst: 443},
	}

	b := nl.NewBuilder()
	require.NoError(t, BuildTuple(b, reg, nl.CtaTupleOrig, tuple))

	attrs, err := nl.ParseAttributeVector(b.Bytes())
	require.NoError(t, err)
	a, ok := attrs[nl.CtaTupleOrig]
	require.True(t, ok)

	got, err := ParseTuple(reg, a)
	require.NoError(t, err)
	assert.Equal(t, tuple.Proto, got.Proto)
	assert.True(t, tuple.SrcIP.Equal(got.SrcIP))
	assert.True(t, tuple.DstIP.Equal(got.DstIP))
	assert.Equal(t, proto.PortPair{Src: 1234, Dst: 443}, got.L4)
}

func TestBuildTupleMissingAddressErrors(t *testing.T) {
	reg := testRegistry()
	b := nl.NewBuilder()
	err := BuildTuple(b, reg, nl.CtaTupleOrig, Tuple{Proto: 6})
	assert.ErrorIs(t, err, ErrMissingTuple)
}

func TestBuildConntrackRoundTrip(t *testing.T) {
	reg := testRegistry()
	f := Flow{
		Orig: Tuple{
			SrcIP: net.ParseIP("192.168.0.1"),
			DstIP: net.ParseIP("192.168.0.2"),
			Proto: 6,
			L4:    proto.PortPair{Src: 5000, Dst: 80},
		},
		Reply: Tuple{
			SrcIP: net.ParseIP("192.168.0.2"),
			DstIP: net.ParseIP("192.168.0.1"),
			Proto: 6,
			L4:    proto.PortPair{Src: 80, Dst: 5000},
		},
		Status:       StatusConfirmed | StatusSeenReply,
		Timeout:      120,
		Mark:         7,
		CountersOrig: Counters{Packets: 10, Bytes: 1500},
	}

	body, err := BuildConntrack(reg, f)
	require.NoError(t, err)

	got, present, err := ParseConntrack(reg, body)
	require.NoError(t, err)
	assert.True(t, present.Has(PresentStatus))
	assert.True(t, present.Has(PresentTimeout))
	assert.True(t, present.Has(PresentMark))
	assert.True(t, present.Has(PresentCountersOrig))
	assert.False(t, present.Has(PresentCountersReply))
	assert.Equal(t, f.Status, got.Status)
	assert.Equal(t, f.Timeout, got.Timeout)
	assert.Equal(t, f.Mark, got.Mark)
	assert.Equal(t, f.CountersOrig, got.CountersOrig)
	assert.True(t, f.Orig.SrcIP.Equal(got.Orig.SrcIP))
	assert.True(t, f.Reply.DstIP.Equal(got.Reply.DstIP))
}

func TestBuildConntrackOmitsIDWhenAny(t *testing.T) {
	reg := testRegistry()
	f := Flow{
		Orig: Tuple{
			SrcIP: net.ParseIP("192.168.0.1"),
			DstIP: net.ParseIP("192.168.0.2"),
			Proto: 6,
			L4:    proto.PortPair{Src: 5000, Dst: 80},
		},
		ID: AnyID,
	}

	body, err := BuildConntrack(reg, f)
	require.NoError(t, err)

	got, present, err := ParseConntrack(reg, body)
	require.NoError(t, err)
	assert.False(t, present.Has(PresentID))
	assert.Zero(t, got.ID)
}

func TestBuildExpectRoundTrip(t *testing.T) {
	reg := testRegistry()
	e := Expect{
		Master: Tuple{
			SrcIP: net.ParseIP("10.0.0.1"),
			DstIP: net.ParseIP("10.0.0.2"),
			Proto: 6,
			L4:    proto.PortPair{Src: 21, Dst: 5000},
		},
		Expected: Tuple{
			SrcIP: net.ParseIP("10.0.0.2"),
			DstIP: net.ParseIP("10.0.0.1"),
			Proto: 6,
			L4:    proto.PortPair{Src: 5001, Dst: 6000},
		},
		Mask: Tuple{
			SrcIP: net.ParseIP("255.255.255.255"),
			DstIP: net.ParseIP("255.255.255.255"),
			Proto: 6,
			L4:    proto.PortPair{Src: 0xffff, Dst: 0xffff},
		},
		Timeout: 30,
		ID:      42,
	}

	body, err := BuildExpect(reg, e)
	require.NoError(t, err)

	got, err := ParseExpect(reg, body)
	require.NoError(t, err)
	assert.Equal(t, e.Timeout, got.Timeout)
	assert.Equal(t, e.ID, got.ID)
	assert.True(t, e.Expected.SrcIP.Equal(got.Expected.SrcIP))
	assert.Equal(t, proto.PortPair{Src: 5001, Dst: 6000}, got.Expected.L4)
}
