// Package happyeyeballs implements C4, the Happy Eyeballs dialer
// (RFC 8305/6555): concurrent AAAA/A resolution, family-interleaved
// candidate addresses, staggered connection attempts, first success
// wins. This is the core algorithm the rest of the connector stack
// exists to serve; everything else is plumbing around it.
package happyeyeballs

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dialkit/connector/errs"
	"github.com/dialkit/connector/mlog"
	"github.com/dialkit/connector/resolver"
	"github.com/dialkit/connector/transport"
	"github.com/dialkit/connector/uri"
)

// AttemptDelay is the minimum interval between two new connection
// attempts.
const AttemptDelay = 100 * time.Millisecond

// ResolutionDelay is the maximum time an A answer is held back to give
// AAAA a chance to arrive first.
const ResolutionDelay = 50 * time.Millisecond

// TransportDial opens a single connection to an already-resolved
// candidate URI. It is the shape of transport.Dial, injectable for
// tests.
type TransportDial func(ctx context.Context, rawURI string) (transport.Connection, error)

// Dialer resolves a hostname and races connection attempts across the
// resolved addresses.
type Dialer struct {
	Resolver        resolver.Resolver
	Dial            TransportDial
	AttemptDelay    time.Duration
	ResolutionDelay time.Duration
	Logger          *zap.Logger
}

func (d *Dialer) attemptDelay() time.Duration {
	if d.AttemptDelay > 0 {
		return d.AttemptDelay
	}
	return AttemptDelay
}

func (d *Dialer) resolutionDelay() time.Duration {
	if d.ResolutionDelay > 0 {
		return d.ResolutionDelay
	}
	return ResolutionDelay
}

func (d *Dialer) logger() *zap.Logger { return mlog.OrNop(d.Logger) }

func (d *Dialer) dial(ctx context.Context, rawURI string) (transport.Connection, error) {
	if d.Dial != nil {
		return d.Dial(ctx, rawURI)
	}
	return transport.Dial(ctx, rawURI, transport.DialOptions{})
}

// shuffle is a package variable so tests can replace it with a no-op
// for deterministic interleave assertions.
var shuffle = func(ips []net.IP) {
	rand.Shuffle(len(ips), func(i, j int) { ips[i], ips[j] = ips[j], ips[i] })
}

// interleave merges a freshly arrived, shuffled batch into the
// existing queue, alternating already-queued and new entries so the
// result alternates address families when both are present.
func interleave(queue, batch []net.IP) []net.IP {
	shuffle(batch)
	merged := make([]net.IP, 0, len(queue)+len(batch))
	i, j := 0, 0
	for i < len(queue) || j < len(batch) {
		if i < len(queue) {
			merged = append(merged, queue[i])
			i++
		}
		if j < len(batch) {
			merged = append(merged, batch[j])
			j++
		}
	}
	return merged
}

func familyOf(ip net.IP) resolver.RecordType {
	if strings.Contains(ip.String(), ":") {
		return resolver.AAAA
	}
	return resolver.A
}

type lookupResult struct {
	ips []net.IP
	err error
}

type attemptResult struct {
	ip   net.IP
	conn transport.Connection
	err  error
}

type familyFailure struct {
	err error
	seq int
}

// Connect resolves parsed.Host and races staggered connection
// attempts across the results, per RFC 8305. parsed.Host must be a
// hostname, not a literal IP — C5 handles the literal-IP fast path
// before ever calling here.
func (d *Dialer) Connect(ctx context.Context, parsed *uri.Parsed) (transport.Connection, error) {
	host := parsed.Host
	displayURI := parsed.Render()

	searchCtx, cancelSearch := context.WithCancel(ctx)
	defer cancelSearch()

	aaaaCh := make(chan lookupResult, 1)
	aCh := make(chan lookupResult, 1)
	go func() {
		ips, err := d.Resolver.ResolveAll(searchCtx, host, resolver.AAAA)
		aaaaCh <- lookupResult{ips, err}
	}()
	go func() {
		ips, err := d.Resolver.ResolveAll(searchCtx, host, resolver.A)
		aCh <- lookupResult{ips, err}
	}()

	var (
		queue             []net.IP
		aaaaDone, aDone   bool
		ipsSeen, failures int
		seq               int
		v6Fail, v4Fail    familyFailure
		firstAttemptStart bool
		pendingA          *lookupResult
		inFlight          int
	)

	recordFailure := func(family resolver.RecordType, err error) {
		seq++
		if family == resolver.AAAA {
			v6Fail = familyFailure{err, seq}
		} else {
			v4Fail = familyFailure{err, seq}
		}
	}

	releaseA := func(res lookupResult) {
		aDone = true
		if res.err != nil {
			recordFailure(resolver.A, res.err)
			return
		}
		queue = interleave(queue, res.ips)
		ipsSeen += len(res.ips)
	}

	attemptResultCh := make(chan attemptResult)
	startAttempt := func(ip net.IP) {
		firstAttemptStart = true
		inFlight++
		candidate := parsed.WithHost(ip.String()).WithHostnameHint(host).Render()
		d.logger().Debug("happy eyeballs attempt", zap.String("ip", ip.String()), zap.String("uri", candidate))
		go func() {
			conn, err := d.dial(searchCtx, candidate)
			select {
			case attemptResultCh <- attemptResult{ip: ip, conn: conn, err: err}:
			case <-searchCtx.Done():
				if conn != nil {
					conn.Close()
				}
			}
		}()
	}

	var pacingTimer *time.Timer
	var pacingCh <-chan time.Time
	armPacing := func() {
		if pacingTimer == nil {
			pacingTimer = time.NewTimer(d.attemptDelay())
			pacingCh = pacingTimer.C
		}
	}
	disarmPacing := func() {
		if pacingTimer != nil {
			pacingTimer.Stop()
			pacingTimer = nil
			pacingCh = nil
		}
	}

	var resolutionTimer *time.Timer
	var resolutionCh <-chan time.Time

	defer func() {
		if pacingTimer != nil {
			pacingTimer.Stop()
		}
		if resolutionTimer != nil {
			resolutionTimer.Stop()
		}
	}()

	for {
		if aaaaDone && aDone && ipsSeen == failures {
			if ipsSeen == 0 && v6Fail.err == nil && v4Fail.err == nil {
				return nil, aggregateFailure(displayURI, 0, familyFailure{}, familyFailure{})
			}
			return nil, aggregateFailure(displayURI, ipsSeen, v6Fail, v4Fail)
		}

		dnsInFlight := !aaaaDone || !aDone
		if len(queue) > 0 || dnsInFlight {
			armPacing()
		} else {
			disarmPacing()
		}

		select {
		case res := <-aaaaCh:
			aaaaCh = nil
			aaaaDone = true
			if res.err != nil {
				recordFailure(resolver.AAAA, res.err)
			} else {
				queue = interleave(queue, res.ips)
				ipsSeen += len(res.ips)
			}
			if pendingA != nil {
				if resolutionTimer != nil {
					resolutionTimer.Stop()
					resolutionTimer = nil
					resolutionCh = nil
				}
				pa := *pendingA
				pendingA = nil
				releaseA(pa)
			}

		case res := <-aCh:
			aCh = nil
			if !aaaaDone && res.err == nil && len(res.ips) > 0 {
				pending := res
				pendingA = &pending
				resolutionTimer = time.NewTimer(d.resolutionDelay())
				resolutionCh = resolutionTimer.C
			} else {
				releaseA(res)
			}

		case <-resolutionCh:
			resolutionCh = nil
			resolutionTimer = nil
			if pendingA != nil {
				pa := *pendingA
				pendingA = nil
				releaseA(pa)
			}

		case <-pacingCh:
			pacingTimer = nil
			pacingCh = nil
			if len(queue) > 0 {
				ip := queue[0]
				queue = queue[1:]
				startAttempt(ip)
			}

		case r := <-attemptResultCh:
			inFlight--
			if r.err == nil {
				cancelSearch()
				return r.conn, nil
			}
			failures++
			recordFailure(familyOf(r.ip), r.err)
			disarmPacing()
			if len(queue) > 0 {
				ip := queue[0]
				queue = queue[1:]
				startAttempt(ip)
			}

		case <-ctx.Done():
			cancelSearch()
			qualifier := ""
			if !firstAttemptStart {
				qualifier = " during DNS lookup"
			}
			return nil, errs.Aborted(fmt.Sprintf("Connection to %s cancelled%s (ECONNABORTED)", displayURI, qualifier))
		}
	}
}

func aggregateFailure(displayURI string, ipsSeen int, v6, v4 familyFailure) error {
	var msg string
	switch {
	case v6.err == nil && v4.err == nil:
		msg = "no addresses found"
	case v6.err != nil && v4.err != nil:
		if v6.err.Error() == v4.err.Error() {
			msg = v6.err.Error()
		} else if v6.seq > v4.seq {
			msg = fmt.Sprintf("Last error for IPv6: %s. Previous error for IPv4: %s", v6.err, v4.err)
		} else {
			msg = fmt.Sprintf("Last error for IPv4: %s. Previous error for IPv6: %s", v4.err, v6.err)
		}
	case v6.err != nil:
		msg = v6.err.Error()
	default:
		msg = v4.err.Error()
	}

	rest := fmt.Sprintf(" failed: %s", msg)
	if ipsSeen == 0 {
		rest = fmt.Sprintf(" failed during DNS lookup: %s", msg)
	}

	var cause error
	code := errs.CodeUnknown
	switch {
	case v6.err != nil && (v4.err == nil || v6.seq >= v4.seq):
		cause = v6.err
	case v4.err != nil:
		cause = v4.err
	}
	if cause != nil {
		if c, ok := errs.CodeOf(cause); ok {
			code = c
		} else {
			code = errs.Classify(cause)
		}
	}
	return errs.Wrap(errs.ClassRuntime, code, cause, fmt.Sprintf("Connection to %s%s", displayURI, rest))
}
