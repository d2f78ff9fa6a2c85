// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package format renders flows and expectations as the one-line text
// summaries the command-line tools print. Every call writes through a
// caller-supplied io.Writer and returns the byte count written, rather
// than building a string into a fixed buffer and risking a silent
// truncation (spec §9 Design Notes #4 — the original implementation's
// sprintf-into-a-fixed-buffer bug).
package format

import (
	"fmt"
	"io"

	"github.com/eve-net/nfconntrack/proto"

	nfct "github.com/eve-net/nfconntrack"
)

// FormatFlow writes a one-line summary of f to w in the conventional
// "proto src=.. dst=.. sport=.. dport=.. [state] reply src=.. dst=..
// sport=.. dport=.. [ASSURED]" shape.
func FormatFlow(w io.Writer, reg *proto.Registry, f nfct.Flow) (int, error) {
	var n int
	name := proto.NameForNumber(f.Orig.Proto)

	written, err := fmt.Fprintf(w, "%s ", name)
	n += written
	if err != nil {
		return n, err
	}

	written, err = writeTuple(w, reg, name, f.Orig)
	n += written
	if err != nil {
		return n, err
	}

	if f.Present.Has(nfct.PresentProtoInfo) && f.ProtoInfo != nil {
		if h, ok := reg.Find(name); ok {
			written, err = fmt.Fprint(w, " ")
			n += written
			if err != nil {
				return n, err
			}
			written, err = h.PrintInfo(w, f.ProtoInfo)
			n += written
			if err != nil {
				return n, err
			}
		}
	}

	written, err = fmt.Fprintf(w, " reply")
	n += written
	if err != nil {
		return n, err
	}
	written, err = writeTuple(w, reg, name, f.Reply)
	n += written
	if err != nil {
		return n, err
	}

	if f.Present.Has(nfct.PresentStatus) && f.Status.Has(nfct.StatusAssured) {
		written, err = fmt.Fprintf(w, " [ASSURED]")
		n += written
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

func writeTuple(w io.Writer, reg *proto.Registry, name string, t nfct.Tuple) (int, error) {
	var n int
	written, err := fmt.Fprintf(w, " src=%s dst=%s", t.SrcIP, t.DstIP)
	n += written
	if err != nil {
		return n, err
	}
	if h, ok := reg.Find(name); ok && t.L4 != nil {
		written, err = fmt.Fprint(w, " ")
		n += written
		if err != nil {
			return n, err
		}
		written, err = h.PrintTuple(w, t.L4)
		n += written
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// FormatExpect writes a one-line summary of e to w.
func FormatExpect(w io.Writer, reg *proto.Registry, e nfct.Expect) (int, error) {
	name := proto.NameForNumber(e.Expected.Proto)
	var n int
	written, err := fmt.Fprintf(w, "%s ", name)
	n += written
	if err != nil {
		return n, err
	}
	written, err = writeTuple(w, reg, name, e.Expected)
	n += written
	if err != nil {
		return n, err
	}
	written, err = fmt.Fprintf(w, " timeout=%d id=%d", e.Timeout, e.ID)
	n += written
	return n, err
}
