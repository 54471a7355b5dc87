package transport

import (
	"net"
	"strconv"
	"strings"
)

// Endpoint is an opaque transport destination: either a TCP address
// (IP+port) or a Unix-domain socket path. The zero value is the
// "unknown" sentinel reported once a Connection has been closed.
type Endpoint struct {
	IP       net.IP
	Port     uint16
	UnixPath string
}

// TCPEndpoint builds a TCP Endpoint.
func TCPEndpoint(ip net.IP, port uint16) Endpoint {
	return Endpoint{IP: ip, Port: port}
}

// UnixEndpoint builds a Unix-domain Endpoint.
func UnixEndpoint(path string) Endpoint {
	return Endpoint{UnixPath: path}
}

// Unknown is the sentinel Endpoint returned by a closed Connection.
var Unknown Endpoint

// IsZero reports whether e is the Unknown sentinel.
func (e Endpoint) IsZero() bool {
	return e.IP == nil && e.UnixPath == ""
}

// IsUnix reports whether e names a Unix-domain socket path.
func (e Endpoint) IsUnix() bool {
	return e.UnixPath != ""
}

// IsIPv6 reports whether e is a TCP endpoint with an IPv6 address.
func (e Endpoint) IsIPv6() bool {
	return !e.IsUnix() && e.IP != nil && strings.Contains(e.IP.String(), ":")
}

// Equal implements structural equality for Endpoint.
func (e Endpoint) Equal(o Endpoint) bool {
	if e.IsUnix() || o.IsUnix() {
		return e.UnixPath == o.UnixPath
	}
	if e.IP == nil || o.IP == nil {
		return e.IP == nil && o.IP == nil
	}
	return e.Port == o.Port && e.IP.Equal(o.IP)
}

// String renders a bare host:port or path, with no scheme.
func (e Endpoint) String() string {
	if e.IsUnix() {
		return e.UnixPath
	}
	if e.IP == nil {
		return "<unknown>"
	}
	return net.JoinHostPort(e.IP.String(), strconv.Itoa(int(e.Port)))
}

// URI renders e as a scheme://... string. encrypted forces the "tls"
// scheme regardless of the endpoint's native transport, matching the
// rule that an encrypted connection always reports tls:// endpoints.
func (e Endpoint) URI(encrypted bool) string {
	if e.IsZero() {
		return ""
	}
	if e.IsUnix() {
		scheme := "unix"
		if encrypted {
			scheme = "tls"
		}
		return scheme + "://" + e.UnixPath
	}
	scheme := "tcp"
	if encrypted {
		scheme = "tls"
	}
	host := e.IP.String()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return scheme + "://" + host + ":" + strconv.Itoa(int(e.Port))
}

func endpointFromAddr(a net.Addr) Endpoint {
	if a == nil {
		return Unknown
	}
	switch addr := a.(type) {
	case *net.TCPAddr:
		return TCPEndpoint(addr.IP, uint16(addr.Port))
	case *net.UnixAddr:
		return UnixEndpoint(addr.Name)
	default:
		host, portStr, err := net.SplitHostPort(a.String())
		if err != nil {
			return Unknown
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Unknown
		}
		return TCPEndpoint(net.ParseIP(host), uint16(port))
	}
}
