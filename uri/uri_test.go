package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialkit/connector/errs"
)

func TestParse_DefaultScheme(t *testing.T) {
	p, err := Parse("1.2.3.4:80", "tcp")
	require.NoError(t, err)
	assert.Equal(t, "tcp", p.Scheme)
	assert.Equal(t, "1.2.3.4", p.Host)
	assert.Equal(t, "80", p.Port)
	assert.True(t, p.IsLiteralIP())
}

func TestParse_IPv6Brackets(t *testing.T) {
	p, err := Parse("tcp://[2001:db8::1]:80", "tcp")
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::1", p.Host)
	assert.True(t, p.IsIPv6())
}

func TestParse_MissingHost(t *testing.T) {
	_, err := Parse("tcp://:80", "tcp")
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.ClassInvalidArgument, e.Class)
	assert.Equal(t, errs.EINVAL, e.Code)
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		"tcp://example.com:80",
		"tcp://[2001:db8::1]:443/foo?x=1#frag",
		"tls://example.com:853?hostname=example.com",
	}
	for _, c := range cases {
		p, err := Parse(c, "tcp")
		require.NoError(t, err)
		assert.Equal(t, c, p.Render())
	}
}

func TestWithHostnameHint_NoExistingQuery(t *testing.T) {
	p, err := Parse("tcp://1.2.3.4:80", "tcp")
	require.NoError(t, err)
	hinted := p.WithHostnameHint("example.com")
	assert.Equal(t, "tcp://1.2.3.4:80?hostname=example.com", hinted.Render())
}

func TestWithHostnameHint_ExistingQuery(t *testing.T) {
	p, err := Parse("tcp://1.2.3.4:80?a=b#frag", "tcp")
	require.NoError(t, err)
	hinted := p.WithHostnameHint("example.com")
	assert.Equal(t, "tcp://1.2.3.4:80?a=b&hostname=example.com#frag", hinted.Render())
}

func TestWithHostnameHint_ExplicitWins(t *testing.T) {
	p, err := Parse("tcp://1.2.3.4:80?hostname=other.example", "tcp")
	require.NoError(t, err)
	hinted := p.WithHostnameHint("example.com")
	assert.Equal(t, p.Render(), hinted.Render())
}

func TestWithHost_CandidateRendering(t *testing.T) {
	p, err := Parse("tcp://example.com:80?x=1", "tcp")
	require.NoError(t, err)
	candidate := p.WithHost("2001:db8::1").WithHostnameHint("example.com")
	assert.Equal(t, "tcp://[2001:db8::1]:80?x=1&hostname=example.com", candidate.Render())
}
