//go:build !linux

package proto

import "fmt"

// loadPlugin is unsupported outside Linux: Go's plugin package only
// builds on Linux, matching the fact that the netlink transport itself
// (package nl) is Linux-only. Built-in protocol handlers still work
// everywhere since they are statically registered.
func loadPlugin(path string) error {
	return fmt.Errorf("proto: dynamic protocol handlers are only supported on linux")
}
