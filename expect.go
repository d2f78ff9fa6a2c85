// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

package nfct

import (
	"github.com/eve-net/nfconntrack/nl"
)

func newExpHeader(seq uint32, family uint8, msgSubtype uint16, flags uint16) []byte {
	msgType := uint16(nl.SubsysCTNetlinkExp)<<8 | msgSubtype
	return nl.FillHeader(seq, family, 0, msgType, flags)
}

// CreateExpectation asks the kernel to register e as a new expected
// connection template.
func (h *Handle) CreateExpectation(e Expect) error {
	body, err := BuildExpect(h.reg, e)
	if err != nil {
		return err
	}
	flags := uint16(nl.NLMFRequest | nl.NLMFAck | nl.NLMFCreate | nl.NLMFExcl)
	hdr := newExpHeader(h.nextSeq(), familyOf(e.Expected), nl.MsgExpNew, flags)
	hdr = append(hdr, body...)
	return h.talk(hdr)
}

// GetExpectation looks up the single expectation matching t (the
// expected tuple) and reports it to cb.
func (h *Handle) GetExpectation(t Tuple, cb ExpectCallback, userData any) error {
	b := nl.NewBuilder()
	if err := BuildTuple(b, h.reg, nl.CtaExpectTuple, t); err != nil {
		return err
	}
	flags := uint16(nl.NLMFRequest | nl.NLMFAck)
	hdr := newExpHeader(h.nextSeq(), familyOf(t), nl.MsgExpGet, flags)
	hdr = append(hdr, b.Bytes()...)
	return h.drainExpectations(hdr, cb, userData)
}

// DeleteExpectation asks the kernel to remove the expectation matching
// t (the expected tuple).
func (h *Handle) DeleteExpectation(t Tuple) error {
	b := nl.NewBuilder()
	if err := BuildTuple(b, h.reg, nl.CtaExpectTuple, t); err != nil {
		return err
	}
	flags := uint16(nl.NLMFRequest | nl.NLMFAck | nl.NLMFRoot | nl.NLMFMatch)
	hdr := newExpHeader(h.nextSeq(), familyOf(t), nl.MsgExpDelete, flags)
	hdr = append(hdr, b.Bytes()...)
	return h.talk(hdr)
}

// DumpExpectations walks every registered expectation of the given
// address family, reporting each to cb.
func (h *Handle) DumpExpectations(family uint8, cb ExpectCallback, userData any) error {
	flags := uint16(nl.NLMFRequest | nl.NLMFDump)
	hdr := newExpHeader(h.nextSeq(), family, nl.MsgExpGet, flags)
	return h.drainExpectations(hdr, cb, userData)
}

// FlushExpectations deletes every registered expectation of the given
// address family.
func (h *Handle) FlushExpectations(family uint8) error {
	flags := uint16(nl.NLMFRequest | nl.NLMFAck)
	hdr := newExpHeader(h.nextSeq(), family, nl.MsgExpDelete, flags)
	return h.talk(hdr)
}

// WatchExpectations listens forever on a Handle opened with
// OpenWatcher, reporting every expectation event to cb.
func (h *Handle) WatchExpectations(cb ExpectCallback, userData any) error {
	return h.watchExpectations(cb, userData)
}
