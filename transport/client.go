package transport

import (
	"net"
	"time"

	"github.com/veteranandreich/Async-web-server/internal/timer"
)

// Client is the blocking side of a connection, as seen by the goroutine driver.
type Client interface {
	Read() ([]byte, error)
	Write([]byte) (int, error)
	Remote() net.Addr
	Close() error
}

type client struct {
	conn         net.Conn
	buff         []byte
	timeout      time.Duration
	writeTimeout time.Duration
}

func NewClient(conn net.Conn, timeout, writeTimeout time.Duration, buff []byte) Client {
	return &client{
		buff:         buff,
		conn:         conn,
		timeout:      timeout,
		writeTimeout: writeTimeout,
	}
}

// Read reads data into the internal buffer and returns a piece of it back. Timeouts are also
// handled automatically. The returned slice is valid until the next Read.
func (c *client) Read() ([]byte, error) {
	if err := c.conn.SetReadDeadline(timer.Now().Add(c.timeout)); err != nil {
		return nil, err
	}

	n, err := c.conn.Read(c.buff)
	return c.buff[:n], err
}

// Write writes data into the underlying connection. Every write must complete within
// the write timeout.
func (c *client) Write(b []byte) (int, error) {
	if err := c.conn.SetWriteDeadline(timer.Now().Add(c.writeTimeout)); err != nil {
		return 0, err
	}

	return c.conn.Write(b)
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}
