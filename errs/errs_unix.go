//go:build unix

package errs

import (
	"golang.org/x/sys/unix"
)

// Real OS errno values on unix platforms, sourced from
// golang.org/x/sys/unix rather than hard-coded numeric constants.
const (
	EINVAL        Code = Code(unix.EINVAL)
	EADDRINUSE    Code = Code(unix.EADDRINUSE)
	EADDRNOTAVAIL Code = Code(unix.EADDRNOTAVAIL)
	ENETUNREACH   Code = Code(unix.ENETUNREACH)
	ECONNABORTED  Code = Code(unix.ECONNABORTED)
	ECONNREFUSED  Code = Code(unix.ECONNREFUSED)
	ETIMEDOUT     Code = Code(unix.ETIMEDOUT)
)

func errnoCode(err error) (Code, bool) {
	errno, ok := err.(unix.Errno)
	if !ok {
		return 0, false
	}
	switch Code(errno) {
	case EINVAL, EADDRINUSE, EADDRNOTAVAIL, ENETUNREACH, ECONNABORTED, ECONNREFUSED, ETIMEDOUT:
		return Code(errno), true
	default:
		return 0, false
	}
}
