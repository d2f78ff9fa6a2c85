// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eve-net/nfconntrack/proto"
	"github.com/eve-net/nfconntrack/proto/tcpproto"

	nfct "github.com/eve-net/nfconntrack"
)

func testRegistry() *proto.Registry {
	r := proto.NewRegistry("")
	r.Register(tcpproto.Handler{})
	return r
}

func TestFormatFlowIncludesTupleAndPorts(t *testing.T) {
	reg := testRegistry()
	f := nfct.Flow{
		Orig: nfct.Tuple{
			SrcIP: net.ParseIP("10.0.0.1"),
			DstIP: net.ParseIP("10.0.0.2"),
			Proto: 6,
			L4:    proto.PortPair{Src: 5000, Dst: 443},
		},
		Reply: nfct.Tuple{
			SrcIP: net.ParseIP("10.0.0.2"),
			DstIP: net.ParseIP("10.0.0.1"),
			Proto: 6,
			L4:    proto.PortPair{Src: 443, Dst: 5000},
		},
		Status:  nfct.StatusConfirmed | nfct.StatusAssured,
		Present: nfct.PresentStatus,
	}

	var sb strings.Builder
	n, err := FormatFlow(&sb, reg, f)
	require.NoError(t, err)
	assert.Equal(t, sb.Len(), n)

	out := sb.String()
	assert.Contains(t, out, "tcp")
	assert.Contains(t, out, "src=10.0.0.1")
	assert.Contains(t, out, "dst=10.0.0.2")
	assert.Contains(t, out, "sport=5000")
	assert.Contains(t, out, "[ASSURED]")
}

func TestFormatFlowOmitsAssuredWhenAbsent(t *testing.T) {
	reg := testRegistry()
	f := nfct.Flow{
		Orig: nfct.Tuple{
			SrcIP: net.ParseIP("10.0.0.1"),
			DstIP: net.ParseIP("10.0.0.2"),
			Proto: 6,
		},
		Reply: nfct.Tuple{
			SrcIP: net.ParseIP("10.0.0.2"),
			DstIP: net.ParseIP("10.0.0.1"),
			Proto: 6,
		},
	}

	var sb strings.Builder
	_, err := FormatFlow(&sb, reg, f)
	require.NoError(t, err)
	assert.NotContains(t, sb.String(), "ASSURED")
}

func TestFormatExpect(t *testing.T) {
	reg := testRegistry()
	e := nfct.Expect{
		Expected: nfct.Tuple{
			SrcIP: net.ParseIP("10.0.0.2"),
			DstIP: net.ParseIP("10.0.0.1"),
			Proto: 6,
			L4:    proto.PortPair{Src: 5001, Dst: 6000},
		},
		Timeout: 30,
		ID:      7,
	}

	var sb strings.Builder
	_, err := FormatExpect(&sb, reg, e)
	require.NoError(t, err)
	out := sb.String()
	assert.Contains(t, out, "timeout=30")
	assert.Contains(t, out, "id=7")
}
