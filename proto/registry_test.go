package proto

import (
	"io"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eve-net/nfconntrack/nl"
)

// stubHandler is a minimal Handler used only to exercise registry
// bookkeeping; its wire methods are all no-ops. Real build/parse/print
// coverage lives in proto/tcpproto, proto/udpproto, proto/icmpproto and
// proto/sctpproto, each against its own protocol shape.
type stubHandler struct {
	name    string
	version string
}

func (s stubHandler) Name() string                                        { return s.name }
func (s stubHandler) Version() string                                     { return s.version }
func (stubHandler) BuildTupleProto(b *nl.Builder, f L4Fields) error       { return nil }
func (stubHandler) BuildProtoInfo(b *nl.Builder, state ProtoState) error  { return nil }
func (stubHandler) ParseTupleProto(attrs nl.AttrMap) (L4Fields, error)    { return nil, nil }
func (stubHandler) ParseProtoInfo(attrs nl.AttrMap) (ProtoState, error)   { return nil, nil }
func (stubHandler) PrintTuple(w io.Writer, fields L4Fields) (int, error)  { return 0, nil }
func (stubHandler) PrintInfo(w io.Writer, state ProtoState) (int, error)  { return 0, nil }

var _ Handler = stubHandler{}

func TestRegisterAndFind(t *testing.T) {
	r := NewRegistry("")
	h := stubHandler{name: "stub", version: Version}
	r.Register(h)

	found, ok := r.Find("stub")
	require.True(t, ok)
	assert.Equal(t, "stub", found.Name())

	_, ok = r.Find("nonexistent")
	assert.False(t, ok)
}

func TestLookupMissingPluginIsNonFatal(t *testing.T) {
	r := NewRegistry(t.TempDir())
	_, ok := r.Lookup("doesnotexist")
	assert.False(t, ok, "a missing plugin file must be a quiet miss, never an error return from Lookup itself")
}

// TestRegisterVersionMismatchIsFatal exercises the fatal abort path
// (spec §4.1, testable property 6) in a subprocess, since it calls
// logrus.Fatalf -> os.Exit(1) and would otherwise kill the test binary.
func TestRegisterVersionMismatchIsFatal(t *testing.T) {
	if os.Getenv("NFCT_REGISTER_MISMATCH_SUBPROCESS") == "1" {
		r := NewRegistry("")
		r.Register(stubHandler{name: "bad", version: "0.1"})
		return // unreachable if Register aborted as required
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestRegisterVersionMismatchIsFatal")
	cmd.Env = append(os.Environ(), "NFCT_REGISTER_MISMATCH_SUBPROCESS=1")
	err := cmd.Run()

	exitErr, ok := err.(*exec.ExitError)
	require.True(t, ok, "expected the subprocess to exit non-zero via logrus.Fatalf, got err=%v", err)
	assert.False(t, exitErr.Success())
}
