package nl

import (
	"encoding/binary"
	"fmt"
)

// Builder assembles a nested-TLV attribute tree into a growable buffer.
// It replaces the ~4KiB stack buffer the C implementation uses for every
// request (see Design Notes) with a slice that grows as needed.
type Builder struct {
	buf []byte
}

// NewBuilder returns a Builder with a conservative initial capacity.
func NewBuilder() *Builder {
	return &Builder{buf: make([]byte, 0, 256)}
}

// Bytes returns the assembled attribute bytes built so far.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Append writes a flat (non-nested) attribute: 4-byte header followed by
// data, padded to a 4-byte boundary.
func (b *Builder) Append(attrType uint16, data []byte) {
	header := make([]byte, 4)
	nativeEndian.PutUint16(header[0:2], uint16(4+len(data)))
	nativeEndian.PutUint16(header[2:4], attrType)
	b.buf = append(b.buf, header...)
	b.buf = append(b.buf, data...)
	if pad := alignAttrLen(len(data)) - len(data); pad > 0 {
		b.buf = append(b.buf, make([]byte, pad)...)
	}
}

// AppendUint8/16/32/64 append a fixed-width big-endian scalar attribute —
// every conntrack wire integer is big-endian (spec §3), regardless of
// host order.
func (b *Builder) AppendUint8(attrType uint16, v uint8) {
	b.Append(attrType, []byte{v})
}

func (b *Builder) AppendUint16(attrType uint16, v uint16) {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)
	b.Append(attrType, buf)
}

func (b *Builder) AppendUint32(attrType uint16, v uint32) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	b.Append(attrType, buf)
}

func (b *Builder) AppendUint64(attrType uint16, v uint64) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	b.Append(attrType, buf)
}

// mark is an opaque offset into the Builder's buffer where a nested
// attribute's length placeholder lives.
type mark int

// Nest opens a nested attribute, setting the NLA_F_NESTED bit on its
// type, and returns a marker to be passed to End once the nested
// children have been appended.
func (b *Builder) Nest(attrType uint16) mark {
	m := mark(len(b.buf))
	header := make([]byte, 4)
	nativeEndian.PutUint16(header[2:4], attrType|AttrFNested)
	b.buf = append(b.buf, header...)
	return m
}

// End closes a nested attribute opened with Nest, back-patching its
// length now that all children have been written.
func (b *Builder) End(m mark) {
	length := len(b.buf) - int(m)
	nativeEndian.PutUint16(b.buf[int(m):int(m)+2], uint16(length))
}

// Attr is one parsed attribute: its type tag (with the nesting bit
// stripped), whether it was nested, and its raw value bytes.
type Attr struct {
	Type   uint16
	Nested bool
	Value  []byte
}

// AttrMap indexes a flat vector of sibling attributes by type tag. It is
// the parse-side analogue of Builder: callers look up CTA_* tags
// directly instead of walking a linked list, the same shape
// parseNfAttrTL/TLV in the teacher's vendored conntrack code walks by
// hand one attribute at a time.
type AttrMap map[uint16]Attr

// ParseAttributeVector walks a flat sequence of sibling TLV attributes
// and returns them indexed by type. It does not recurse into nested
// attributes; callers that need a nested attribute's children call
// ParseNested on that attribute's Value.
func ParseAttributeVector(data []byte) (AttrMap, error) {
	out := make(AttrMap)
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, fmt.Errorf("nl: truncated attribute header (%d bytes left)", len(data))
		}
		length := nativeEndian.Uint16(data[0:2])
		rawType := nativeEndian.Uint16(data[2:4])
		if int(length) < 4 || int(length) > len(data) {
			return nil, fmt.Errorf("nl: attribute length %d out of range (%d bytes left)", length, len(data))
		}
		nested := rawType&AttrFNested != 0
		attrType := rawType & attrTypeMask
		value := data[4:length]
		out[attrType] = Attr{Type: attrType, Nested: nested, Value: value}
		data = data[alignAttrLen(int(length)):]
	}
	return out, nil
}

// ParseNested is ParseAttributeVector applied to the value of an
// attribute already known to be nested.
func ParseNested(attr Attr) (AttrMap, error) {
	if !attr.Nested {
		return nil, fmt.Errorf("nl: attribute %d is not nested", attr.Type)
	}
	return ParseAttributeVector(attr.Value)
}

// Uint8/16/32/64 decode an attribute's value as a big-endian scalar. They
// panic-free return the zero value on a short read, leaving validation
// to the caller (mirrors the generic-portion-stays-usable failure mode
// spec §4.1 requires of missing/malformed protocol attributes).
func (a Attr) Uint8() uint8 {
	if len(a.Value) < 1 {
		return 0
	}
	return a.Value[0]
}

func (a Attr) Uint16() uint16 {
	if len(a.Value) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(a.Value)
}

func (a Attr) Uint32() uint32 {
	if len(a.Value) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(a.Value)
}

func (a Attr) Uint64() uint64 {
	if len(a.Value) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(a.Value)
}
