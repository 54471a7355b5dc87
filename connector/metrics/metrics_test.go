package metrics

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialkit/connector/transport"
)

func TestWrapper_SuccessAndFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	calls := 0
	w, err := Wrap(func(ctx context.Context, rawURI string) (transport.Connection, error) {
		calls++
		if rawURI == "fail" {
			return nil, errors.New("boom")
		}
		return transport.New(&net.TCPConn{}, false), nil
	}, "test", reg)
	require.NoError(t, err)

	_, err = w.Connect(context.Background(), "tcp://1.2.3.4:80")
	require.NoError(t, err)

	_, err = w.Connect(context.Background(), "fail")
	require.Error(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, float64(2), readCounter(t, w.dialTotal))
	assert.Equal(t, float64(1), readCounter(t, w.errTotal))
}

func readCounter(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
