package tlsconn

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialkit/connector/errs"
	"github.com/dialkit/connector/transport"
)

func selfSignedCert(t *testing.T) tls.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "127.0.0.1"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func loopbackPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	serverCh := make(chan net.Conn, 1)
	go func() {
		c, _ := l.Accept()
		serverCh <- c
	}()

	client, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	server := <-serverCh
	require.NotNil(t, server)
	return client, server
}

func TestEnable_Handshake(t *testing.T) {
	cert := selfSignedCert(t)
	clientRaw, serverRaw := loopbackPair(t)

	clientConn := transport.New(clientRaw, false)
	serverConn := transport.New(serverRaw, false)

	serverCfg := &tls.Config{Certificates: []tls.Certificate{cert}}
	clientCfg := &tls.Config{InsecureSkipVerify: true}

	type result struct {
		conn transport.Connection
		err  error
	}
	serverDone := make(chan result, 1)
	go func() {
		c, err := Enable(context.Background(), serverConn, Server, serverCfg, "tcp://127.0.0.1:0")
		serverDone <- result{c, err}
	}()

	clientTLS, err := Enable(context.Background(), clientConn, Client, clientCfg, "tcp://127.0.0.1:0")
	require.NoError(t, err)
	defer clientTLS.Close()
	assert.True(t, clientTLS.IsEncrypted())

	srv := <-serverDone
	require.NoError(t, srv.err)
	defer srv.conn.Close()
	assert.True(t, srv.conn.IsEncrypted())
}

func TestEnable_Cancel(t *testing.T) {
	clientRaw, serverRaw := loopbackPair(t)
	defer serverRaw.Close()

	clientConn := transport.New(clientRaw, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &tls.Config{InsecureSkipVerify: true}
	_, err := Enable(ctx, clientConn, Client, cfg, "tcp://127.0.0.1:0")
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.ECONNABORTED, e.Code)
}

func TestWrapListener_Accept(t *testing.T) {
	cert := selfSignedCert(t)
	l, err := transport.Listen("tcp://127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	tl := WrapListener(l, &tls.Config{Certificates: []tls.Certificate{cert}})

	type result struct {
		conn transport.Connection
		err  error
	}
	serverDone := make(chan result, 1)
	go func() {
		c, err := tl.Accept()
		serverDone <- result{c, err}
	}()

	addr := tl.Addr().(*net.TCPAddr)
	clientConn, err := tls.Dial("tcp", addr.String(), &tls.Config{InsecureSkipVerify: true})
	require.NoError(t, err)
	defer clientConn.Close()

	srv := <-serverDone
	require.NoError(t, srv.err)
	defer srv.conn.Close()
	assert.True(t, srv.conn.IsEncrypted())
}

func TestEnable_HandshakeFailure(t *testing.T) {
	clientRaw, serverRaw := loopbackPair(t)
	clientConn := transport.New(clientRaw, false)
	serverConn := transport.New(serverRaw, false)

	cert := selfSignedCert(t)
	serverCfg := &tls.Config{Certificates: []tls.Certificate{cert}}
	// Client does not trust the self-signed cert and has no override.
	clientCfg := &tls.Config{ServerName: "127.0.0.1"}

	go Enable(context.Background(), serverConn, Server, serverCfg, "tcp://127.0.0.1:0")

	_, err := Enable(context.Background(), clientConn, Client, clientCfg, "tcp://127.0.0.1:0")
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.ClassRuntime, e.Class)
}
