package proto

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// envSearchDir is the environment variable consulted on every dynamic
// Lookup call (spec §6), matching the C original's lib_dir global.
const envSearchDir = "LIBNETFILTER_CONNTRACK_DIR"

// defaultSearchDir is the compile-time fallback when envSearchDir is
// unset.
const defaultSearchDir = "/usr/lib/nfct-proto"

// Registry is a set of registered layer-4 protocol handlers, keyed by
// canonical name. It is safe for concurrent Find/Lookup calls but, per
// spec §5, mutation (Register, or the Lookup-triggered plugin load) is
// expected to happen during startup before concurrent use begins.
type Registry struct {
	mu       sync.Mutex
	handlers map[string]Handler
	dir      string // explicit search dir override; "" means consult envSearchDir
	log      *logrus.Logger
}

// NewRegistry constructs an empty registry. If dir is non-empty it is
// used as a fixed plugin search directory, snapshotted once, instead of
// re-reading envSearchDir on every Lookup — the Design Notes' preferred
// alternative to the C original's read-the-environment-every-time
// behavior, offered here as an option rather than forced on every
// caller.
func NewRegistry(dir string) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		dir:      dir,
		log:      logrus.StandardLogger(),
	}
}

// SetLogger overrides the logger used for plugin-load diagnostics.
func (r *Registry) SetLogger(log *logrus.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = log
}

func (r *Registry) searchDir() string {
	if r.dir != "" {
		return r.dir
	}
	if dir := os.Getenv(envSearchDir); dir != "" {
		return dir
	}
	return defaultSearchDir
}

// Register inserts h under h.Name(). A version mismatch is fatal: the
// process aborts rather than risk a wrong-ABI plugin silently
// corrupting messages (spec §4.1, §7).
func (r *Registry) Register(h Handler) {
	if h.Version() != Version {
		r.mu.Lock()
		log := r.log
		r.mu.Unlock()
		log.Fatalf("proto: handler %q has version %q, library is %q — refusing to load", h.Name(), h.Version(), Version)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Name()] = h
}

// Find returns a handler already registered under name, without
// attempting to load a plugin.
func (r *Registry) Find(name string) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Lookup is Find, falling back to loading {searchDir}/nfct_proto_{name}.so
// on a miss. A well-formed plugin registers itself as a side effect of
// its init() function; Lookup re-scans after a successful load. Load
// failure is logged and treated as "no handler" (spec §4.1, §7) — it is
// never fatal, only a version mismatch on an actually-loaded handler is.
func (r *Registry) Lookup(name string) (Handler, bool) {
	if h, ok := r.Find(name); ok {
		return h, true
	}
	path := filepath.Join(r.searchDir(), "nfct_proto_"+name+".so")
	if err := loadPlugin(path); err != nil {
		r.mu.Lock()
		log := r.log
		r.mu.Unlock()
		log.Warnf("proto: could not load handler %q from %s: %v", name, path, err)
		return nil, false
	}
	return r.Find(name)
}

var defaultRegistry = NewRegistry("")

// Default returns the process-wide registry that built-in protocol
// packages (proto/tcpproto, proto/udpproto, ...) register themselves
// into from init().
func Default() *Registry {
	return defaultRegistry
}

// Register registers h into the default, process-wide registry.
func Register(h Handler) {
	defaultRegistry.Register(h)
}
