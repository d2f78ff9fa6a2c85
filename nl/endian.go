package nl

import (
	"encoding/binary"
	"unsafe"
)

// nativeEndian mirrors vishvananda/netlink/nl's NativeEndian(): netlink
// attribute length/type headers are host byte order, never network byte
// order, so we detect the host's order once at init instead of assuming.
var nativeEndian binary.ByteOrder = detectNativeEndian()

func detectNativeEndian() binary.ByteOrder {
	var i uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// NativeEndian returns the host's byte order, used for netlink/nfnetlink
// header fields. Wire *payload* integers (ports, addresses, counters,
// timeouts) are always big-endian regardless of host order.
func NativeEndian() binary.ByteOrder {
	return nativeEndian
}
