// Package transport implements C2 (the Transport Dialer): opening a
// single TCP or Unix connection to an already-resolved IP/path, and
// C2's server-side mirror, listening on the same two transports.
package transport

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dialkit/connector/errs"
	"github.com/dialkit/connector/mlog"
	"github.com/dialkit/connector/uri"
)

const defaultDialTimeout = 5 * time.Second

// DialOptions carries the SO-style socket options and knobs C2 passes
// through to the underlying net.Dialer.
type DialOptions struct {
	// Timeout bounds the dial itself. Zero uses defaultDialTimeout.
	// Use context cancellation (via ctx) for caller-driven timeouts;
	// this is an upper bound so a single dial can't hang forever.
	Timeout time.Duration

	// SoMark sets SO_MARK (linux only).
	SoMark int
	// BindToDevice sets SO_BINDTODEVICE (linux only).
	BindToDevice string

	Logger *zap.Logger
}

func (o DialOptions) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultDialTimeout
}

func (o DialOptions) logger() *zap.Logger {
	return mlog.OrNop(o.Logger)
}

// Dial opens a single connection described by rawURI, which must be a
// "tcp://<ip>:<port>[?hostname=...]" or "unix://<path>" string — the
// host must already be a literal IP for the tcp scheme; hostname
// resolution is C4/C5's job, not C2's.
func Dial(ctx context.Context, rawURI string, opts DialOptions) (Connection, error) {
	scheme, rest := splitScheme(rawURI)
	switch scheme {
	case "unix":
		return dialUnix(ctx, rawURI, rest, opts)
	case "tcp", "":
		return dialTCP(ctx, rawURI, opts)
	default:
		return nil, errs.Invalid(fmt.Sprintf("invalid URI %q: unsupported transport scheme %q (EINVAL)", rawURI, scheme))
	}
}

func splitScheme(raw string) (string, string) {
	if i := strings.Index(raw, "://"); i >= 0 {
		return strings.ToLower(raw[:i]), raw[i+3:]
	}
	return "tcp", raw
}

func dialTCP(ctx context.Context, rawURI string, opts DialOptions) (Connection, error) {
	parsed, err := uri.Parse(rawURI, "tcp")
	if err != nil {
		return nil, err
	}
	if parsed.Port == "" {
		return nil, errs.Invalid(fmt.Sprintf("invalid URI %q: port required (EINVAL)", rawURI))
	}
	if !parsed.IsLiteralIP() {
		return nil, errs.Invalid(fmt.Sprintf("invalid URI %q: host must be a literal IP address (EINVAL)", rawURI))
	}

	addr := net.JoinHostPort(parsed.Host, parsed.Port)
	d := &net.Dialer{Timeout: opts.timeout(), Control: buildControl(opts)}

	opts.logger().Debug("dialing tcp", zap.String("addr", addr))
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, wrapDialErr(ctx, rawURI, err)
	}
	return New(c, false), nil
}

func dialUnix(ctx context.Context, rawURI, path string, opts DialOptions) (Connection, error) {
	if path == "" {
		return nil, errs.Invalid(fmt.Sprintf("invalid URI %q: unix path required (EINVAL)", rawURI))
	}
	d := &net.Dialer{Timeout: opts.timeout()}

	opts.logger().Debug("dialing unix", zap.String("path", path))
	c, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, wrapDialErr(ctx, rawURI, err)
	}
	return New(c, true), nil
}

func wrapDialErr(ctx context.Context, rawURI string, err error) error {
	if ctx.Err() != nil {
		return errs.Aborted(fmt.Sprintf("Connection to %s cancelled (ECONNABORTED)", rawURI))
	}
	code := errs.Classify(err)
	return errs.Wrap(errs.ClassRuntime, code, err,
		fmt.Sprintf("Connection to %s failed: %s (%s)", rawURI, err, code))
}
