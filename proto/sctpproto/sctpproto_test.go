package sctpproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eve-net/nfconntrack/nl"
	"github.com/eve-net/nfconntrack/proto"
)

func TestBuildParseProtoInfoRoundTrip(t *testing.T) {
	h := Handler{}
	b := nl.NewBuilder()
	info := &Info{State: 2, VTagOrig: 111, VTagReply: 222}
	require.NoError(t, h.BuildProtoInfo(b, info))

	attrs, err := nl.ParseAttributeVector(b.Bytes())
	require.NoError(t, err)

	parsed, err := h.ParseProtoInfo(attrs)
	require.NoError(t, err)
	got, ok := parsed.(*Info)
	require.True(t, ok)
	assert.Equal(t, info, got)
}

func TestParseProtoInfoMissingIsNil(t *testing.T) {
	h := Handler{}
	parsed, err := h.ParseProtoInfo(nl.AttrMap{})
	require.NoError(t, err)
	assert.Nil(t, parsed)
}
