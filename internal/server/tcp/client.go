package tcp

import (
	"net"
	"time"
)

// Client is a duplex byte stream of a single connection.
type Client interface {
	// Read returns the next fragment of data. The returned slice is valid only until the
	// next call. io.EOF is returned as soon as the peer has closed the stream.
	Read() ([]byte, error)
	// Write sends the data. Writing into a closed connection is a no-op.
	Write([]byte) error
	Remote() net.Addr
	Close() error
}

type client struct {
	buff    []byte
	conn    net.Conn
	timeout time.Duration
	closed  bool
}

func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		buff:    buff,
		conn:    conn,
		timeout: timeout,
	}
}

func (c *client) Read() ([]byte, error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}
	}

	n, err := c.conn.Read(c.buff)

	return c.buff[:n], err
}

func (c *client) Write(b []byte) error {
	if c.closed {
		return nil
	}

	if _, err := c.conn.Write(b); err != nil {
		if IsClosed(err) {
			c.closed = true
			return nil
		}

		return err
	}

	return nil
}

func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *client) Close() error {
	c.closed = true
	return c.conn.Close()
}
