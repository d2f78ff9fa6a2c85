// Copyright (c) 2020 Zededa, Inc.
// SPDX-License-Identifier: Apache-2.0

package nfct

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eve-net/nfconntrack/nl"
)

func TestClassifyKind(t *testing.T) {
	newType := uint16(nl.SubsysCTNetlink)<<8 | nl.MsgCtNew
	deleteType := uint16(nl.SubsysCTNetlink)<<8 | nl.MsgCtDelete
	otherType := uint16(nl.SubsysCTNetlink)<<8 | nl.MsgCtGetStats

	assert.Equal(t, KindNew, classifyKind(newType, nl.NLMFCreate|nl.NLMFExcl))
	assert.Equal(t, KindNew, classifyKind(newType, nl.NLMFCreate))
	assert.Equal(t, KindNew, classifyKind(newType, nl.NLMFExcl))
	assert.Equal(t, KindUpdate, classifyKind(newType, 0))
	assert.Equal(t, KindDestroy, classifyKind(deleteType, 0))
	assert.Equal(t, KindUnknown, classifyKind(otherType, 0))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "new", KindNew.String())
	assert.Equal(t, "update", KindUpdate.String())
	assert.Equal(t, "destroy", KindDestroy.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
