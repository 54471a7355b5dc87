package connector

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"

	"github.com/dialkit/connector/errs"
	"github.com/dialkit/connector/tlsconn"
	"github.com/dialkit/connector/transport"
	"github.com/dialkit/connector/uri"
)

// SecureConnector is C6: it establishes the inner transport connection
// (typically via a DNSDispatcher) and layers TLS on top of it with C3.
type SecureConnector struct {
	// Inner dials the stripped-of-tls:// inner URI — "tcp://host:port".
	Inner DialFunc
	// TLSConfig is cloned per call; ServerName defaults to the URI's
	// host (or its hostname= hint) when unset.
	TLSConfig *tls.Config
}

// Connect implements Connector. rawURI may omit its scheme, in which
// case "tls://" is assumed.
func (c *SecureConnector) Connect(ctx context.Context, rawURI string) (transport.Connection, error) {
	parsed, err := uri.Parse(rawURI, "tls")
	if err != nil {
		return nil, err
	}
	outerURI := parsed.Render()

	inner := parsed.Clone()
	inner.Scheme = "tcp"
	innerURI := inner.Render()

	conn, err := c.Inner(ctx, innerURI)
	if err != nil {
		return nil, rewriteOuterURI(err, innerURI, outerURI)
	}

	if _, ok := transport.AsStream(conn); !ok {
		conn.Close()
		return nil, errs.Unexpected("Base connector does not use internal Connection class exposing stream resource")
	}

	cfg := c.TLSConfig.Clone()
	if cfg == nil {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		if hint, ok := parsed.QueryParam(uri.HostnameParam); ok {
			cfg.ServerName = hint
		} else {
			cfg.ServerName = parsed.Host
		}
	}

	return tlsconn.Enable(ctx, conn, tlsconn.Client, cfg, outerURI)
}

// rewriteOuterURI rewraps an inner-dialer error so its message reflects
// the outer tls:// URI instead of the stripped-down inner one, while
// preserving the original Code and chaining the original as Cause.
func rewriteOuterURI(err error, innerURI, outerURI string) error {
	var e *errs.Error
	if !errors.As(err, &e) {
		return err
	}
	msg := strings.Replace(e.Message, innerURI, outerURI, 1)
	return errs.Wrap(e.Class, e.Code, err, msg)
}
