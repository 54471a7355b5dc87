package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/dialkit/connector/errs"
	"github.com/dialkit/connector/transport"
)

// WithTimeout is C8: it races inner against a timer, cancelling inner
// and returning a Timeout error if the timer fires first.
func WithTimeout(inner DialFunc, timeout time.Duration) DialFunc {
	return func(ctx context.Context, rawURI string) (transport.Connection, error) {
		innerCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		type result struct {
			conn transport.Connection
			err  error
		}
		done := make(chan result, 1)
		go func() {
			conn, err := inner(innerCtx, rawURI)
			done <- result{conn, err}
		}()

		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case r := <-done:
			return r.conn, r.err
		case <-timer.C:
			cancel()
			return nil, errs.TimedOut(fmt.Sprintf("Connection to %s timed out after %s", rawURI, timeout))
		case <-ctx.Done():
			cancel()
			return nil, errs.Aborted(fmt.Sprintf("Connection to %s cancelled (ECONNABORTED)", rawURI))
		}
	}
}
