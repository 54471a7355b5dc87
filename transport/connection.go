package transport

import (
	"net"
	"sync"
)

// Connection is a live bidirectional byte stream augmented with the
// endpoint and transport metadata the connector stack needs. It is
// owned by whichever component opened it until Close is called.
//
// After Close, LocalEndpoint/RemoteEndpoint return the Unknown
// sentinel rather than an error: querying a dead connection is not a
// failure, it simply has nothing left to report.
type Connection interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error

	LocalEndpoint() Endpoint
	RemoteEndpoint() Endpoint
	IsUnix() bool
	IsEncrypted() bool
}

// StreamAccessor is implemented by every Connection this package
// produces. C6 (the secure connector) uses it to reach into an inner
// connector's result and layer TLS on top of the raw net.Conn; a
// Connection from a foreign implementation that does not support this
// is rejected rather than silently mishandled.
type StreamAccessor interface {
	Stream() net.Conn
}

// AsStream extracts the underlying net.Conn from a Connection, if it
// supports StreamAccessor.
func AsStream(conn Connection) (net.Conn, bool) {
	sa, ok := conn.(StreamAccessor)
	if !ok {
		return nil, false
	}
	return sa.Stream(), true
}

type conn struct {
	c         net.Conn
	isUnix    bool
	encrypted bool

	mu     sync.Mutex
	closed bool
	local  Endpoint
	remote Endpoint
}

// New wraps an already-established net.Conn as a plaintext Connection.
func New(c net.Conn, isUnix bool) Connection {
	return newConn(c, isUnix, false)
}

// NewEncrypted wraps an already-established net.Conn (typically a
// *tls.Conn post-handshake) as an encrypted Connection.
func NewEncrypted(c net.Conn, isUnix bool) Connection {
	return newConn(c, isUnix, true)
}

func newConn(c net.Conn, isUnix, encrypted bool) *conn {
	return &conn{
		c:         c,
		isUnix:    isUnix,
		encrypted: encrypted,
		local:     endpointFromAddr(c.LocalAddr()),
		remote:    endpointFromAddr(c.RemoteAddr()),
	}
}

func (c *conn) Read(p []byte) (int, error)  { return c.c.Read(p) }
func (c *conn) Write(p []byte) (int, error) { return c.c.Write(p) }

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.c.Close()
}

func (c *conn) LocalEndpoint() Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Unknown
	}
	return c.local
}

func (c *conn) RemoteEndpoint() Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Unknown
	}
	return c.remote
}

func (c *conn) IsUnix() bool      { return c.isUnix }
func (c *conn) IsEncrypted() bool { return c.encrypted }
func (c *conn) Stream() net.Conn  { return c.c }
