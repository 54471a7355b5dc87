//go:build linux

package transport

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// buildControl realizes dial-time SO_MARK and SO_BINDTODEVICE options
// as a net.Dialer.Control func.
func buildControl(opts DialOptions) func(network, address string, c syscall.RawConn) error {
	if opts.SoMark == 0 && opts.BindToDevice == "" {
		return nil
	}
	return func(_, _ string, c syscall.RawConn) error {
		var sysErr error
		err := c.Control(func(fd uintptr) {
			if opts.SoMark != 0 {
				if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_MARK, opts.SoMark); e != nil {
					sysErr = os.NewSyscallError("setsockopt(SO_MARK)", e)
					return
				}
			}
			if opts.BindToDevice != "" {
				if e := unix.SetsockoptString(int(fd), unix.SOL_SOCKET, unix.SO_BINDTODEVICE, opts.BindToDevice); e != nil {
					sysErr = os.NewSyscallError("setsockopt(SO_BINDTODEVICE)", e)
					return
				}
			}
		})
		if err != nil {
			return err
		}
		return sysErr
	}
}
