package connector

import (
	"context"

	"github.com/dialkit/connector/happyeyeballs"
	"github.com/dialkit/connector/transport"
	"github.com/dialkit/connector/uri"
)

// DNSDispatcher is C5: it detects a literal-IP host and delegates
// straight to the transport dialer, or hands a hostname off to the
// Happy Eyeballs dialer.
type DNSDispatcher struct {
	// Transport dials a URI whose host is already a literal IP.
	Transport DialFunc
	// HappyEyeballs resolves and races connection attempts for a
	// hostname. Required only if Connect is ever called with a
	// hostname URI.
	HappyEyeballs *happyeyeballs.Dialer
}

// Connect implements Connector.
func (c *DNSDispatcher) Connect(ctx context.Context, rawURI string) (transport.Connection, error) {
	parsed, err := uri.Parse(rawURI, "tcp")
	if err != nil {
		return nil, err
	}
	if parsed.IsLiteralIP() {
		return c.Transport(ctx, rawURI)
	}
	return c.HappyEyeballs.Connect(ctx, parsed)
}
