package connector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dialkit/connector/errs"
	"github.com/dialkit/connector/transport"
)

// SchemeSlot is a sum type: a scheme is either routed to a Connector or
// explicitly disabled. The zero value is neither — RouterConfig
// treats a scheme absent from its map the same as Disabled.
type SchemeSlot struct {
	connector Connector
	disabled  bool
}

// Enabled returns a SchemeSlot that routes to c.
func Enabled(c Connector) SchemeSlot {
	return SchemeSlot{connector: c}
}

// Disabled returns a SchemeSlot that rejects every URI of its scheme.
func Disabled() SchemeSlot {
	return SchemeSlot{disabled: true}
}

func (s SchemeSlot) active() (Connector, bool) {
	if s.disabled || s.connector == nil {
		return nil, false
	}
	return s.connector, true
}

// RouterConfig configures C7: a mapping from scheme to sub-connector,
// plus an optional blanket timeout applied to every dispatched call.
type RouterConfig struct {
	Schemes map[string]SchemeSlot
	// Timeout, if >0, wraps every dispatched sub-connector with C8.
	Timeout time.Duration
}

// Router is C7, the Scheme Router.
type Router struct {
	cfg RouterConfig
}

// NewRouter builds a Router from cfg.
func NewRouter(cfg RouterConfig) *Router {
	return &Router{cfg: cfg}
}

// Connect implements Connector: it dispatches rawURI to the
// sub-connector registered for its scheme, defaulting to "tcp" when no
// scheme is present.
func (r *Router) Connect(ctx context.Context, rawURI string) (transport.Connection, error) {
	scheme := schemeOf(rawURI)
	sub, ok := r.cfg.Schemes[scheme].active()
	if !ok {
		return nil, errs.Invalid(fmt.Sprintf("No connector available for URI scheme %q (EINVAL)", scheme))
	}

	dial := DialFunc(sub.Connect)
	if r.cfg.Timeout > 0 {
		dial = WithTimeout(dial, r.cfg.Timeout)
	}
	return dial(ctx, rawURI)
}

func schemeOf(raw string) string {
	if i := strings.Index(raw, "://"); i >= 0 {
		return strings.ToLower(raw[:i])
	}
	return "tcp"
}
