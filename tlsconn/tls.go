// Package tlsconn implements C3, the TLS Wrapper: upgrading an
// established transport.Connection to TLS with a cancellable
// handshake via tls.Client/tls.Server and HandshakeContext.
package tlsconn

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/dialkit/connector/errs"
	"github.com/dialkit/connector/transport"
)

// Role selects which side of the handshake Enable performs.
type Role int

const (
	Client Role = iota
	Server
)

// Enable upgrades conn to TLS as the given Role, using cfg. rawURI is
// used only to render error messages — it should be the URI the
// caller is ultimately trying to reach, not conn's raw endpoint.
//
// On success, is_encrypted becomes true and conn is NOT closed: the
// caller now owns the returned Connection instead. On any failure —
// including caller cancellation — conn is closed.
func Enable(ctx context.Context, conn transport.Connection, role Role, cfg *tls.Config, rawURI string) (transport.Connection, error) {
	stream, ok := transport.AsStream(conn)
	if !ok {
		conn.Close()
		return nil, errs.Unexpected("connection does not expose a stream resource for TLS")
	}

	var tlsConn *tls.Conn
	switch role {
	case Server:
		tlsConn = tls.Server(stream, cfg)
	default:
		tlsConn = tls.Client(stream, cfg)
	}

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return nil, errs.Aborted(fmt.Sprintf("Connection to %s cancelled during TLS handshake (ECONNABORTED)", rawURI))
		}
		return nil, errs.Wrap(errs.ClassRuntime, errs.Classify(err), err,
			fmt.Sprintf("Connection to %s failed during TLS handshake: %s", rawURI, err))
	}

	return transport.NewEncrypted(tlsConn, conn.IsUnix()), nil
}

// TLSListener wraps a transport.Listener so Accept returns a
// TLS-upgraded Connection instead of a plaintext one. Accept-loop
// dispatch is still the caller's job — this only performs the
// handshake.
type TLSListener struct {
	inner *transport.Listener
	cfg   *tls.Config
}

// WrapListener returns a TLSListener layering cfg's server-side TLS
// handshake over every Connection l.Accept produces.
func WrapListener(l *transport.Listener, cfg *tls.Config) *TLSListener {
	return &TLSListener{inner: l, cfg: cfg}
}

// Accept blocks until a peer connects, performs the TLS handshake, and
// returns the resulting encrypted Connection.
func (tl *TLSListener) Accept() (transport.Connection, error) {
	conn, err := tl.inner.Accept()
	if err != nil {
		return nil, err
	}
	return Enable(context.Background(), conn, Server, tl.cfg, conn.RemoteEndpoint().URI(true))
}

// Close closes the underlying listener.
func (tl *TLSListener) Close() error { return tl.inner.Close() }

// Addr returns the underlying listener's address.
func (tl *TLSListener) Addr() net.Addr { return tl.inner.Addr() }
