package icmpproto

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
	require.NoError(t, h.BuildTupleProto(b, proto.ICMPTypeCode{Type: 8, Code: 0}))

	attrs, err := nl.ParseAttributeVector(b.Bytes())
	require.NoError(t, err)

	fields, err := h.ParseTupleProto(attrs)
	require.NoError(t, err)
	assert.Equal(t, proto.ICMPTypeCode{Type: 8, Code: 0}, fields)
}

func TestBuildTupleProtoWrongShapeErrors(t *testing.T) {
	h := Handler{}
	b := nl.NewBuilder()
	err := h.BuildTupleProto(b, proto.PortPair{})
	assert.Error(t, err)
}
