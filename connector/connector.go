// Package connector assembles C5 through C8 into the composition
// pipeline a caller actually drives: scheme dispatch, hostname
// resolution, TLS layering, and an optional timeout, all speaking the
// same Connector contract so any stage can wrap or replace any other.
package connector

import (
	"context"

	"github.com/dialkit/connector/transport"
)

// Connector is the contract every stage of the pipeline satisfies:
// connect(uri) -> Connection | error, cancellable via ctx.
type Connector interface {
	Connect(ctx context.Context, rawURI string) (transport.Connection, error)
}

// DialFunc adapts a plain function to the Connector interface, the way
// http.HandlerFunc adapts a function to http.Handler.
type DialFunc func(ctx context.Context, rawURI string) (transport.Connection, error)

// Connect calls f.
func (f DialFunc) Connect(ctx context.Context, rawURI string) (transport.Connection, error) {
	return f(ctx, rawURI)
}
