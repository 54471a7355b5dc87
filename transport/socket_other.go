//go:build !linux

package transport

import "syscall"

// buildControl is a no-op on platforms without SO_MARK/SO_BINDTODEVICE
// support.
func buildControl(opts DialOptions) func(network, address string, c syscall.RawConn) error {
	return nil
}
