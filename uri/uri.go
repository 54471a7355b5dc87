// Package uri implements the connector stack's URI model (C1): parsing
// and rendering of scheme://host:port/path?query#fragment strings,
// classification of literal-IP vs hostname authorities, and the
// hostname= hint injection used by the Happy Eyeballs dialer and the
// DNS-dispatching connector.
package uri

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	"github.com/dialkit/connector/errs"
)

// HostnameParam is the query key used to pass the original hostname
// alongside a literal-IP candidate address, for downstream TLS SNI /
// certificate verification.
const HostnameParam = "hostname"

// Parsed is a parsed connector URI. Host is always unbracketed, even
// for IPv6 literals; Render re-adds brackets where required.
type Parsed struct {
	Scheme   string
	Host     string
	Port     string
	Path     string
	RawQuery string
	Fragment string
}

// Parse parses raw into a Parsed URI. If raw has no "scheme://" prefix,
// defaultScheme is prepended before parsing. Parse fails with an
// *errs.Error (InvalidArgument/EINVAL) if raw cannot be parsed or has
// no host.
func Parse(raw string, defaultScheme string) (*Parsed, error) {
	s := raw
	if !strings.Contains(s, "://") {
		s = defaultScheme + "://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, errs.Invalid(fmt.Sprintf("invalid URI %q: %s (EINVAL)", raw, err))
	}

	host := u.Hostname()
	if host == "" {
		return nil, errs.Invalid(fmt.Sprintf("invalid URI %q: missing host (EINVAL)", raw))
	}

	if net.ParseIP(host) == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return nil, errs.Invalid(fmt.Sprintf("invalid URI %q: invalid hostname %q: %s (EINVAL)", raw, host, err))
		}
		host = ascii
	}

	return &Parsed{
		Scheme:   strings.ToLower(u.Scheme),
		Host:     host,
		Port:     u.Port(),
		Path:     u.EscapedPath(),
		RawQuery: u.RawQuery,
		Fragment: u.EscapedFragment(),
	}, nil
}

// IsLiteralIP reports whether Host is a literal IPv4 or IPv6 address
// rather than a hostname requiring resolution.
func (p *Parsed) IsLiteralIP() bool {
	return net.ParseIP(p.Host) != nil
}

// IsIPv6 reports whether Host is a literal IPv6 address.
func (p *Parsed) IsIPv6() bool {
	ip := net.ParseIP(p.Host)
	return ip != nil && strings.Contains(p.Host, ":")
}

// Clone returns a shallow copy of p.
func (p *Parsed) Clone() *Parsed {
	c := *p
	return &c
}

// WithHost returns a copy of p with Host replaced by host (used by C4
// to render a per-candidate-IP URI).
func (p *Parsed) WithHost(host string) *Parsed {
	c := p.Clone()
	c.Host = host
	return c
}

// HasQueryParam reports whether key appears in the raw query string.
func (p *Parsed) HasQueryParam(key string) bool {
	return hasParam(p.RawQuery, key)
}

// QueryParam returns the first value for key in the raw query string.
func (p *Parsed) QueryParam(key string) (string, bool) {
	if p.RawQuery == "" {
		return "", false
	}
	for _, kv := range strings.Split(p.RawQuery, "&") {
		k, v, hasEq := strings.Cut(kv, "=")
		if k != key {
			continue
		}
		if !hasEq {
			return "", true
		}
		unescaped, err := url.QueryUnescape(v)
		if err != nil {
			return v, true
		}
		return unescaped, true
	}
	return "", false
}

// WithHostnameHint returns a copy of p with a "hostname=<host>" query
// parameter appended, unless an explicit hostname= parameter is
// already present (in which case it wins and no injection occurs).
// A pre-existing query is separated from the injected pair by '&'; an
// empty query is introduced with '?' at render time.
func (p *Parsed) WithHostnameHint(host string) *Parsed {
	if p.HasQueryParam(HostnameParam) {
		return p.Clone()
	}
	c := p.Clone()
	pair := HostnameParam + "=" + url.QueryEscape(host)
	if c.RawQuery == "" {
		c.RawQuery = pair
	} else {
		c.RawQuery = c.RawQuery + "&" + pair
	}
	return c
}

// Render reassembles the URI byte-exactly for any Parsed produced by
// Parse: scheme://authority[path][?query][#fragment]. The exceptions
// are the parts Parse normalizes: the scheme is lowercased and a
// hostname is rendered in its idna lookup form (lowercase ASCII).
func (p *Parsed) Render() string {
	var b strings.Builder
	b.WriteString(p.Scheme)
	b.WriteString("://")

	if strings.Contains(p.Host, ":") {
		b.WriteByte('[')
		b.WriteString(p.Host)
		b.WriteByte(']')
	} else {
		b.WriteString(p.Host)
	}
	if p.Port != "" {
		b.WriteByte(':')
		b.WriteString(p.Port)
	}
	b.WriteString(p.Path)
	if p.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(p.RawQuery)
	}
	if p.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(p.Fragment)
	}
	return b.String()
}

func hasParam(rawQuery, key string) bool {
	if rawQuery == "" {
		return false
	}
	for _, kv := range strings.Split(rawQuery, "&") {
		k, _, _ := strings.Cut(kv, "=")
		if k == key {
			return true
		}
	}
	return false
}
