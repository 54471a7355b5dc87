//go:build !unix

package errs

// Documented fallback errno values (per spec.md §6) for platforms
// without golang.org/x/sys/unix errno constants.
const (
	EINVAL        Code = 22
	EADDRINUSE    Code = 98
	EADDRNOTAVAIL Code = 99
	ENETUNREACH   Code = 101
	ECONNABORTED  Code = 103
	ECONNREFUSED  Code = 111
	ETIMEDOUT     Code = 110
)

func errnoCode(err error) (Code, bool) {
	return 0, false
}
