// Package resolver defines the hostname-resolution contract C4 and C5
// depend on and a net.Resolver-backed default implementation.
// Implementing the DNS wire protocol is out of scope: this package only
// ever asks the standard resolver for "A/AAAA records for this host".
package resolver

import (
	"context"
	"net"

	"github.com/dialkit/connector/errs"
)

// RecordType selects which address family a Resolver call asks for.
type RecordType int

const (
	A RecordType = iota
	AAAA
)

func (t RecordType) network() string {
	if t == AAAA {
		return "ip6"
	}
	return "ip4"
}

func (t RecordType) String() string {
	if t == AAAA {
		return "AAAA"
	}
	return "A"
}

// Resolver is the collaborator contract C4's happy-eyeballs loop and
// C5's hostname dispatch depend on. An empty result is a valid answer,
// not an error; a failed lookup returns an error. Implementations must
// respect ctx cancellation.
type Resolver interface {
	ResolveAll(ctx context.Context, host string, recordType RecordType) ([]net.IP, error)
}

// Default resolves hostnames with the standard library's resolver.
type Default struct {
	r *net.Resolver
}

// New wraps r as a Resolver. A nil r uses net.DefaultResolver.
func New(r *net.Resolver) *Default {
	if r == nil {
		r = net.DefaultResolver
	}
	return &Default{r: r}
}

// ResolveAll looks up host's addresses of the given record type.
// LookupIP failures that mean "no such record" (net.DNSError with
// IsNotFound) are reported as an empty result rather than an error, to
// let the happy-eyeballs loop treat "this family doesn't exist" the
// same as "this family is empty" instead of an aggregate-failure cause.
func (d *Default) ResolveAll(ctx context.Context, host string, recordType RecordType) ([]net.IP, error) {
	ips, err := d.r.LookupIP(ctx, recordType.network(), host)
	if err != nil {
		if dnsErr, ok := err.(*net.DNSError); ok && dnsErr.IsNotFound {
			return nil, nil
		}
		return nil, errs.FromDialError(err)
	}
	return ips, nil
}
