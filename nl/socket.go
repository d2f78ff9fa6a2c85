package nl

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

const nlmsghdrLen = 16
const nfgenmsgLen = 4

// Socket is a netlink socket bound to a netfilter subsystem. It owns
// exactly one file descriptor and is not safe for concurrent use by
// more than one goroutine at a time (spec §5).
type Socket struct {
	fd int
}

// Open binds a new netlink socket to NETLINK_NETFILTER, subscribing to
// the given multicast groups (0 for none — used by request/reply
// operations; non-zero for event listeners).
func Open(groups uint32) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_NETFILTER)
	if err != nil {
		return nil, err
	}
	sa := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: groups}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Socket{fd: fd}, nil
}

// Close releases the socket's file descriptor.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}

// Fd returns the underlying file descriptor, for callers that want to
// multiplex it into their own event loop (e.g. select/poll).
func (s *Socket) Fd() int {
	return s.fd
}

// FillHeader assembles the fixed nlmsghdr + nfgenmsg header for a new
// request and returns a buffer ready for attributes to be appended to
// it. The message length field is left zero; Send/Talk patch it in
// once the body is complete.
func FillHeader(seq uint32, family uint8, resID uint16, msgType uint16, flags uint16) []byte {
	buf := make([]byte, nlmsghdrLen+nfgenmsgLen)
	nativeEndian.PutUint16(buf[4:6], msgType)
	nativeEndian.PutUint16(buf[6:8], flags)
	nativeEndian.PutUint32(buf[8:12], seq)
	buf[16] = family
	buf[17] = NFNetlinkV0
	binary.BigEndian.PutUint16(buf[18:20], resID)
	return buf
}

func finalize(buf []byte) []byte {
	nativeEndian.PutUint32(buf[0:4], uint32(len(buf)))
	return buf
}

func headerMsgType(buf []byte) uint16 {
	return nativeEndian.Uint16(buf[4:6])
}

func headerFlags(buf []byte) uint16 {
	return nativeEndian.Uint16(buf[6:8])
}

// Send transmits a single request datagram to the kernel without
// waiting for a reply.
func (s *Socket) Send(hdr []byte) error {
	finalize(hdr)
	sa := &unix.SockaddrNetlink{Family: unix.AF_NETLINK}
	return unix.Sendto(s.fd, hdr, 0, sa)
}

// Talk sends a request and blocks until the kernel's ACK arrives,
// returning the kernel-reported errno (nil on success). It is the
// dispatch shape single-shot, ACK-only operations use (create, flush,
// delete) — spec §4.3.
func (s *Socket) Talk(hdr []byte) error {
	if err := s.Send(hdr); err != nil {
		return err
	}
	buf := make([]byte, 65536)
	for {
		n, _, err := unix.Recvfrom(s.fd, buf, 0)
		if err != nil {
			return err
		}
		for _, msg := range splitMessages(buf[:n]) {
			switch headerMsgType(msg) {
			case NLMsgError:
				return errnoFromAck(msg)
			case NLMsgDone:
				return nil
			}
		}
	}
}

// Listen drives a receive loop, routing each datagram's body (the
// attributes after the nlmsghdr and nfgenmsg headers) through
// trampoline until it returns non-zero, the kernel reports NLMSG_DONE
// or an ACK, or a transport error occurs. It is used both by the multi-reply
// drain dispatch shape and by the event-watching verbs, which never
// send a request and simply listen forever (spec §4.3).
func (s *Socket) Listen(trampoline func(msgType uint16, flags uint16, body []byte) int) error {
	buf := make([]byte, 65536)
	for {
		n, _, err := unix.Recvfrom(s.fd, buf, 0)
		if err != nil {
			return err
		}
		for _, msg := range splitMessages(buf[:n]) {
			msgType := headerMsgType(msg)
			flags := headerFlags(msg)
			switch msgType {
			case NLMsgDone:
				return nil
			case NLMsgError:
				if err := errnoFromAck(msg); err != nil {
					return err
				}
				return nil
			default:
				if len(msg) < nlmsghdrLen+nfgenmsgLen {
					continue
				}
				body := msg[nlmsghdrLen+nfgenmsgLen:]
				if rc := trampoline(msgType, flags, body); rc != 0 {
					return nil
				}
			}
		}
	}
}

// splitMessages breaks a single recvfrom buffer, which may carry more
// than one nlmsghdr back to back (NLM_F_MULTI dumps), into individual
// whole messages including their headers.
func splitMessages(data []byte) [][]byte {
	var out [][]byte
	for len(data) >= nlmsghdrLen {
		length := int(nativeEndian.Uint32(data[0:4]))
		if length < nlmsghdrLen || length > len(data) {
			break
		}
		out = append(out, data[:length])
		data = data[alignAttrLen(length):]
	}
	return out
}

func errnoFromAck(msg []byte) error {
	body := msg[nlmsghdrLen:]
	if len(body) < 4 {
		return fmt.Errorf("nl: truncated ack")
	}
	errno := int32(nativeEndian.Uint32(body[0:4]))
	if errno == 0 {
		return nil
	}
	return unix.Errno(-errno)
}
