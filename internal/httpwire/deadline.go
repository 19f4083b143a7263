package httpwire

import (
	"net"
	"time"
)

// DefaultReadTimeout is the idle limit applied to every read on a connection.
const DefaultReadTimeout = 30 * time.Second

// IdleTimeoutConn re-arms the read deadline before each Read, so the limit
// bounds the wait for the next bytes rather than the whole exchange.
type IdleTimeoutConn struct {
	net.Conn
	timeout time.Duration
}

// WithIdleTimeout wraps conn. A non-positive timeout uses DefaultReadTimeout.
func WithIdleTimeout(conn net.Conn, timeout time.Duration) *IdleTimeoutConn {
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	return &IdleTimeoutConn{Conn: conn, timeout: timeout}
}

func (c *IdleTimeoutConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}
