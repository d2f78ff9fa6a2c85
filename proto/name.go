package proto

import (
	"strings"

	"github.com/google/gopacket/layers"
)

// NameForNumber maps an IP protocol number to the canonical lowercase
// name the registry is keyed by, delegating to gopacket's IANA protocol
// table instead of hand-rolling a duplicate of it. gopacket's name for
// protocol 1 ("ICMPv4") is mapped to "icmp", the name the ICMP handler
// registers under. Unknown numbers render as gopacket does
// ("unknownipprotocol"); callers treat that as "no handler" exactly as
// an unregistered name would (spec §4.1).
func NameForNumber(protoNum uint8) string {
	name := strings.ToLower(layers.IPProtocol(protoNum).String())
	if name == "icmpv4" {
		return "icmp"
	}
	return name
}
