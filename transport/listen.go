package transport

import (
	"fmt"
	"net"

	"github.com/dialkit/connector/errs"
)

// Listener is the dial side's server mirror: a net.Listener whose
// Accept returns transport-layer Connections instead of bare
// net.Conns. Accept-loop dispatch and FD inheritance are out of
// scope — this only establishes the socket and exposes the same
// Connection type C2 produces on the dial side.
type Listener struct {
	net.Listener
	isUnix bool
}

// Accept blocks until a peer connects, returning it as a Connection.
func (l *Listener) Accept() (Connection, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return New(c, l.isUnix), nil
}

// ListenUnix opens a Unix-domain listener at path, the server-side
// mirror of dialing a "unix://" URI.
func ListenUnix(path string) (*Listener, error) {
	return Listen("unix://" + path)
}

// Listen opens a TCP or Unix listener for rawURI ("tcp://host:port" or
// "unix://path").
func Listen(rawURI string) (*Listener, error) {
	scheme, rest := splitScheme(rawURI)
	switch scheme {
	case "unix":
		if rest == "" {
			return nil, errs.Invalid(fmt.Sprintf("invalid URI %q: unix path required (EINVAL)", rawURI))
		}
		l, err := net.Listen("unix", rest)
		if err != nil {
			return nil, errs.Wrap(errs.ClassRuntime, errs.Classify(err), err,
				fmt.Sprintf("failed to listen on %s: %s", rawURI, err))
		}
		return &Listener{Listener: l, isUnix: true}, nil
	case "tcp", "":
		l, err := net.Listen("tcp", rest)
		if err != nil {
			return nil, errs.Wrap(errs.ClassRuntime, errs.Classify(err), err,
				fmt.Sprintf("failed to listen on %s: %s", rawURI, err))
		}
		return &Listener{Listener: l}, nil
	default:
		return nil, errs.Invalid(fmt.Sprintf("invalid URI %q: unsupported transport scheme %q (EINVAL)", rawURI, scheme))
	}
}
