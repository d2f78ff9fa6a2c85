// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

package nfct

import (
	"sync"

	"github.com/eve-net/nfconntrack/nl"
	"github.com/eve-net/nfconntrack/proto"
)

// Handle is a connection-tracking client bound to one netlink socket. A
// Handle is not safe for concurrent use by more than one goroutine at a
// time (spec §5); callers that need concurrent access open multiple
// Handles.
type Handle struct {
	mu   sync.Mutex
	sock *nl.Socket
	reg  *proto.Registry
	seq  uint32
}

// Open returns a Handle bound to a fresh request/reply netlink socket
// (no multicast group subscriptions), using the default protocol
// handler registry.
func Open() (*Handle, error) {
	return OpenWithRegistry(proto.Default())
}

// OpenWithRegistry is Open, using reg instead of the default registry.
// Callers embedding this library alongside their own out-of-tree
// protocol handlers use this to supply a registry pre-populated with
// them.
func OpenWithRegistry(reg *proto.Registry) (*Handle, error) {
	sock, err := nl.Open(0)
	if err != nil {
		return nil, err
	}
	return &Handle{sock: sock, reg: reg}, nil
}

// OpenWatcher returns a Handle bound to a netlink socket subscribed to
// the given multicast groups, for use with WatchFlows/WatchExpectations.
// groups is a bitmask of NF_NETLINK_CONNTRACK_* group bits; callers
// import golang.org/x/sys/unix or hardcode the bit they want, since
// this library does not redeclare that table (spec §6).
func OpenWatcher(groups uint32) (*Handle, error) {
	sock, err := nl.Open(groups)
	if err != nil {
		return nil, err
	}
	return &Handle{sock: sock, reg: proto.Default()}, nil
}

// Close releases the Handle's underlying netlink socket. A closed
// Handle must not be used again.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sock == nil {
		return ErrBadHandle
	}
	err := h.sock.Close()
	h.sock = nil
	return err
}

// Registry returns the protocol handler registry this Handle looks up
// tuple/protocol-info codecs in.
func (h *Handle) Registry() *proto.Registry {
	return h.reg
}

// talk sends a single request and blocks for its ACK (the single-shot,
// ACK-only dispatch shape: create, delete, flush — spec §4.3).
func (h *Handle) talk(hdr []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sock == nil {
		return ErrBadHandle
	}
	return h.sock.Talk(hdr)
}

// send transmits a request without waiting for any reply. The watch
// verbs do not use it: they only listen.
func (h *Handle) send(hdr []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sock == nil {
		return ErrBadHandle
	}
	return h.sock.Send(hdr)
}

// drainFlows runs the multi-reply drain dispatch shape for conntrack
// replies (get/dump), parsing each reply and invoking cb until cb
// returns non-zero or the kernel signals NLMSG_DONE (spec §4.3).
func (h *Handle) drainFlows(hdr []byte, cb FlowCallback, userData any) error {
	h.mu.Lock()
	sock := h.sock
	reg := h.reg
	h.mu.Unlock()
	if sock == nil {
		return ErrBadHandle
	}
	if err := sock.Send(hdr); err != nil {
		return err
	}
	return sock.Listen(func(msgType, flags uint16, body []byte) int {
		flow, present, err := ParseConntrack(reg, body)
		if err != nil {
			return 0
		}
		return cb(flow, present, classifyKind(msgType, flags), userData)
	})
}

// watchFlows is drainFlows without ever sending a request: the socket
// is already subscribed to an event multicast group and this simply
// listens forever (spec §4.3).
func (h *Handle) watchFlows(cb FlowCallback, userData any) error {
	h.mu.Lock()
	sock := h.sock
	reg := h.reg
	h.mu.Unlock()
	if sock == nil {
		return ErrBadHandle
	}
	return sock.Listen(func(msgType, flags uint16, body []byte) int {
		flow, present, err := ParseConntrack(reg, body)
		if err != nil {
			return 0
		}
		return cb(flow, present, classifyKind(msgType, flags), userData)
	})
}

// drainExpectations is drainFlows's Expect analogue.
func (h *Handle) drainExpectations(hdr []byte, cb ExpectCallback, userData any) error {
	h.mu.Lock()
	sock := h.sock
	reg := h.reg
	h.mu.Unlock()
	if sock == nil {
		return ErrBadHandle
	}
	if err := sock.Send(hdr); err != nil {
		return err
	}
	return sock.Listen(func(msgType, flags uint16, body []byte) int {
		exp, err := ParseExpect(reg, body)
		if err != nil {
			return 0
		}
		return cb(exp, userData)
	})
}

func (h *Handle) watchExpectations(cb ExpectCallback, userData any) error {
	h.mu.Lock()
	sock := h.sock
	reg := h.reg
	h.mu.Unlock()
	if sock == nil {
		return ErrBadHandle
	}
	return sock.Listen(func(msgType, flags uint16, body []byte) int {
		exp, err := ParseExpect(reg, body)
		if err != nil {
			return 0
		}
		return cb(exp, userData)
	})
}
