//go:build linux

package proto

import "plugin"

// loadPlugin maps the shared object at path, triggering its init()
// self-registration side effect. Go's plugin package resolves symbols
// eagerly on Open, matching the "immediate symbol resolution" the spec's
// plugin ABI requires (spec §6).
func loadPlugin(path string) error {
	_, err := plugin.Open(path)
	return err
}
