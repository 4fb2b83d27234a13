package dummy

import (
	"io"
	"net"
)

// Addr is the remote address of every mock.
var Addr net.Addr = &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321}

// Client returns the chunks it was initialised with one by one, followed by io.EOF,
// unless set to loop them. It also tracks all the written data, making it thereby a
// universal mock suitable for most of the tests.
type Client struct {
	closed     bool
	loop       bool
	journaling bool
	pointer    int
	written    []byte
	data       [][]byte
	err        error
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data:       data,
		journaling: true,
		err:        io.EOF,
	}
}

func (c *Client) Read() (data []byte, err error) {
	if c.closed {
		return nil, net.ErrClosed
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			return nil, c.err
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Write(p []byte) (int, error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	if c.journaling {
		c.written = append(c.written, p...)
	}

	return len(p), nil
}

func (*Client) Remote() net.Addr {
	return Addr
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *Client) Closed() bool {
	return c.closed
}

// LoopReads makes the client to start over once the data is exhausted.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// Err sets the error returned once the data is exhausted. Defaults to io.EOF.
func (c *Client) Err(err error) *Client {
	c.err = err
	return c
}

func (c *Client) Journaling(flag bool) *Client {
	c.journaling = flag
	return c
}

func (c *Client) Written() string {
	if !c.journaling {
		panic("mock client: cannot access written data: journaling is disabled!")
	}

	return string(c.written)
}
