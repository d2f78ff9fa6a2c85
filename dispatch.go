// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

package nfct

import "github.com/eve-net/nfconntrack/nl"

const nfnlMsgTypeMask = 0xff

// ctMsgType extracts the IPCTNL_MSG_CT_* subtype from a netlink
// message's nlmsg_type field, which the netfilter convention packs as
// (subsys_id << 8) | msg_type.
func ctMsgType(msgType uint16) uint16 {
	return msgType & nfnlMsgTypeMask
}

// classifyKind reproduces the original implementation's event
// classification: a CT_NEW subtype with either NLM_F_CREATE or
// NLM_F_EXCL set is a brand new flow, the same subtype with neither is
// an update to an existing flow, and CT_DELETE is a destroy (spec
// §4.3, Design Notes).
func classifyKind(msgType, flags uint16) Kind {
	switch ctMsgType(msgType) {
	case nl.MsgCtNew:
		if flags&(nl.NLMFCreate|nl.NLMFExcl) != 0 {
			return KindNew
		}
		return KindUpdate
	case nl.MsgCtDelete:
		return KindDestroy
	default:
		return KindUnknown
	}
}
