// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

// Command nfct-dump prints every conntrack table entry, one per line,
// matching the original implementation's nfct list command.
package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	nfct "github.com/eve-net/nfconntrack"
	"github.com/eve-net/nfconntrack/format"

	_ "github.com/eve-net/nfconntrack/proto/icmpproto"
	_ "github.com/eve-net/nfconntrack/proto/sctpproto"
	_ "github.com/eve-net/nfconntrack/proto/tcpproto"
	_ "github.com/eve-net/nfconntrack/proto/udpproto"
)

func main() {
	debugPtr := flag.Bool("d", false, "Debug flag")
	ipv6Ptr := flag.Bool("6", false, "Dump the IPv6 table instead of IPv4")
	zeroPtr := flag.Bool("z", false, "Zero counters while dumping")
	flag.Parse()

	log := logrus.StandardLogger()
	if *debugPtr {
		log.SetLevel(logrus.DebugLevel)
	}

	h, err := nfct.Open()
	if err != nil {
		log.Fatalf("nfct-dump: open: %v", err)
	}
	defer h.Close()

	family := uint8(unix.AF_INET)
	if *ipv6Ptr {
		family = unix.AF_INET6
	}

	cb := func(f nfct.Flow, present nfct.PresenceFlags, kind nfct.Kind, _ any) int {
		if _, err := format.FormatFlow(os.Stdout, h.Registry(), f); err != nil {
			log.Warnf("nfct-dump: write: %v", err)
			return 1
		}
		os.Stdout.WriteString("\n")
		return 0
	}

	if *zeroPtr {
		err = h.DumpAndZeroFlows(family, cb, nil)
	} else {
		err = h.DumpFlows(family, cb, nil)
	}
	if err != nil {
		log.Fatalf("nfct-dump: dump: %v", err)
	}
}
