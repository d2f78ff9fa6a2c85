package nl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderFlatAttrRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.AppendUint32(CtaTimeout, 300)
	b.AppendUint8(CtaTupleProto, 6) // arbitrary flat attr for the test

	attrs, err := ParseAttributeVector(b.Bytes())
	require.NoError(t, err)

	require.Contains(t, attrs, uint16(CtaTimeout))
	assert.Equal(t, uint32(300), attrs[CtaTimeout].Uint32())
	assert.False(t, attrs[CtaTimeout].Nested)
}

func TestBuilderNestedAttrRoundTrip(t *testing.T) {
	b := NewBuilder()
	tupleMark := b.Nest(CtaTupleOrig)
	ipMark := b.Nest(CtaTupleIP)
	b.Append(CtaIPV4Src, []byte{10, 0, 0, 1})
	b.Append(CtaIPV4Dst, []byte{10, 0, 0, 2})
	b.End(ipMark)
	b.End(tupleMark)

	top, err := ParseAttributeVector(b.Bytes())
	require.NoError(t, err)

	orig, ok := top[CtaTupleOrig]
	require.True(t, ok)
	require.True(t, orig.Nested)

	nested, err := ParseNested(orig)
	require.NoError(t, err)

	ipAttr, ok := nested[CtaTupleIP]
	require.True(t, ok)
	require.True(t, ipAttr.Nested)

	ipAttrs, err := ParseNested(ipAttr)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 0, 0, 1}, ipAttrs[CtaIPV4Src].Value)
	assert.Equal(t, []byte{10, 0, 0, 2}, ipAttrs[CtaIPV4Dst].Value)
}

func TestBuilderUnalignedValuePadding(t *testing.T) {
	b := NewBuilder()
	b.AppendUint8(CtaTupleProto, 17)
	b.AppendUint32(CtaTimeout, 1)

	// The 1-byte CtaTupleProto attribute must be padded to a 4-byte
	// boundary before the next attribute header starts, or the second
	// attribute's header would be misaligned and unparsable.
	attrs, err := ParseAttributeVector(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint8(17), attrs[CtaTupleProto].Uint8())
	assert.Equal(t, uint32(1), attrs[CtaTimeout].Uint32())
}

func TestParseAttributeVectorTruncated(t *testing.T) {
	_, err := ParseAttributeVector([]byte{1, 2})
	assert.Error(t, err)
}
