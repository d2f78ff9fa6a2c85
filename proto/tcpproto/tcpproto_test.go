package tcpproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eve-net/nfconntrack/nl"
	"github.com/eve-net/nfconntrack/proto"
)

func TestBuildParseTupleProtoRoundTrip(t *testing.T) {
	h := Handler{}
	b := nl.NewBuilder()
	require.NoError(t, h.BuildTupleProto(b, proto.PortPair{Src: 1234, Dst: 80}))

	attrs, err := nl.ParseAttributeVector(b.Bytes())
	require.NoError(t, err)

	fields, err := h.ParseTupleProto(attrs)
	require.NoError(t, err)
	assert.Equal(t, proto.PortPair{Src: 1234, Dst: 80}, fields)
}

func TestBuildParseProtoInfoRoundTrip(t *testing.T) {
	h := Handler{}
	b := nl.NewBuilder()
	info := &Info{State: 3, WScaleOrig: 7, HaveWScaleOrig: true}
	require.NoError(t, h.BuildProtoInfo(b, info))

	attrs, err := nl.ParseAttributeVector(b.Bytes())
	require.NoError(t, err)

	parsed, err := h.ParseProtoInfo(attrs)
	require.NoError(t, err)
	got, ok := parsed.(*Info)
	require.True(t, ok)
	assert.Equal(t, uint8(3), got.State)
	assert.Equal(t, uint8(7), got.WScaleOrig)
	assert.True(t, got.HaveWScaleOrig)
	assert.False(t, got.HaveWScaleReply)
}

func TestBuildTupleProtoWrongShapeErrors(t *testing.T) {
	h := Handler{}
	b := nl.NewBuilder()
	err := h.BuildTupleProto(b, proto.ICMPTypeCode{})
	assert.Error(t, err)
}
