// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

// Command nfct-demo pings a target with go-fastping and then dumps the
// conntrack table once, printing the ICMP flows, as a smoke test that the
// whole stack (transport, codec, protocol handler, dump verb) is wired
// up end to end against a live kernel.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tatsushid/go-fastping"
	"golang.org/x/sys/unix"

	nfct "github.com/eve-net/nfconntrack"
	"github.com/eve-net/nfconntrack/format"

	_ "github.com/eve-net/nfconntrack/proto/icmpproto"
	_ "github.com/eve-net/nfconntrack/proto/tcpproto"
	_ "github.com/eve-net/nfconntrack/proto/udpproto"
)

func main() {
	targetPtr := flag.String("target", "127.0.0.1", "host to ping")
	flag.Parse()

	log := logrus.StandardLogger()

	target, err := net.ResolveIPAddr("ip4", *targetPtr)
	if err != nil {
		log.Fatalf("nfct-demo: resolve %s: %v", *targetPtr, err)
	}

	pinger := fastping.NewPinger()
	pinger.AddIPAddr(target)
	pinger.OnRecv = func(addr *net.IPAddr, rtt time.Duration) {
		fmt.Printf("ping reply from %s in %s\n", addr, rtt)
	}
	pinger.OnIdle = func() {
		fmt.Println("ping round complete")
	}

	h, err := nfct.Open()
	if err != nil {
		log.Fatalf("nfct-demo: open: %v", err)
	}
	defer h.Close()

	if err := pinger.Run(); err != nil {
		log.Fatalf("nfct-demo: ping: %v", err)
	}

	fmt.Println("conntrack entries for icmp traffic:")
	err = h.DumpFlows(unix.AF_INET, func(f nfct.Flow, present nfct.PresenceFlags, kind nfct.Kind, _ any) int {
		if f.Orig.Proto != 1 {
			return 0
		}
		if _, err := format.FormatFlow(os.Stdout, h.Registry(), f); err != nil {
			return 1
		}
		os.Stdout.WriteString("\n")
		return 0
	}, nil)
	if err != nil {
		log.Fatalf("nfct-demo: dump: %v", err)
	}
}
