// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

// Command nfct-watch subscribes to the kernel's conntrack event
// multicast groups and prints each new/update/destroy event as it
// arrives, matching the original implementation's nfct event command.
package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	nfct "github.com/eve-net/nfconntrack"
	"github.com/eve-net/nfconntrack/format"

	_ "github.com/eve-net/nfconntrack/proto/icmpproto"
	_ "github.com/eve-net/nfconntrack/proto/sctpproto"
	_ "github.com/eve-net/nfconntrack/proto/tcpproto"
	_ "github.com/eve-net/nfconntrack/proto/udpproto"
)

// NF_NETLINK_CONNTRACK_* multicast group bits
// (include/uapi/linux/netfilter/nfnetlink_compat.h). Not redeclared in
// package nl since nothing there needs them; this is the one caller
// that does.
const (
	groupNew         = 1 << 0
	groupUpdate      = 1 << 1
	groupDestroy     = 1 << 2
	groupExpNew      = 1 << 3
	groupExpUpdate   = 1 << 4
	groupExpDestroy  = 1 << 5
)

func main() {
	debugPtr := flag.Bool("d", false, "Debug flag")
	expectPtr := flag.Bool("e", false, "Watch expectation events instead of flow events")
	flag.Parse()

	log := logrus.StandardLogger()
	if *debugPtr {
		log.SetLevel(logrus.DebugLevel)
	}

	groups := uint32(groupNew | groupUpdate | groupDestroy)
	if *expectPtr {
		groups = groupExpNew | groupExpUpdate | groupExpDestroy
	}

	h, err := nfct.OpenWatcher(groups)
	if err != nil {
		log.Fatalf("nfct-watch: open: %v", err)
	}
	defer h.Close()

	if *expectPtr {
		err = h.WatchExpectations(func(e nfct.Expect, _ any) int {
			if _, err := format.FormatExpect(os.Stdout, h.Registry(), e); err != nil {
				log.Warnf("nfct-watch: write: %v", err)
				return 1
			}
			os.Stdout.WriteString("\n")
			return 0
		}, nil)
	} else {
		err = h.WatchFlows(func(f nfct.Flow, present nfct.PresenceFlags, kind nfct.Kind, _ any) int {
			os.Stdout.WriteString("[" + kind.String() + "] ")
			if _, err := format.FormatFlow(os.Stdout, h.Registry(), f); err != nil {
				log.Warnf("nfct-watch: write: %v", err)
				return 1
			}
			os.Stdout.WriteString("\n")
			return 0
		}, nil)
	}
	if err != nil {
		log.Fatalf("nfct-watch: watch: %v", err)
	}
}
