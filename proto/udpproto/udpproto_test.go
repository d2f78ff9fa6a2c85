package udpproto

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
	require.NoError(t, h.BuildTupleProto(b, proto.PortPair{Src: 53, Dst: 12345}))

	attrs, err := nl.ParseAttributeVector(b.Bytes())
	require.NoError(t, err)

	fields, err := h.ParseTupleProto(attrs)
	require.NoError(t, err)
	assert.Equal(t, proto.PortPair{Src: 53, Dst: 12345}, fields)
}

func TestBuildProtoInfoIsNoOp(t *testing.T) {
	h := Handler{}
	b := nl.NewBuilder()
	require.NoError(t, h.BuildProtoInfo(b, nil))
	assert.Empty(t, b.Bytes())
}
