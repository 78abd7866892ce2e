package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/httpfromtcp/internal/server/tcp"
)

var _ tcp.Client = new(FragmentClient)

// FragmentClient returns the fragments it was initialised with one by one, reporting
// io.EOF afterwards. Everything written is recorded.
type FragmentClient struct {
	SinkholeWriter
	data    [][]byte
	pointer int
	closed  bool
}

func NewFragmentClient(data ...[]byte) *FragmentClient {
	return &FragmentClient{
		data: data,
	}
}

// NewSplitClient splits the data into fragments of n bytes at most.
func NewSplitClient(data []byte, n int) *FragmentClient {
	return NewFragmentClient(Split(data, n)...)
}

func (c *FragmentClient) Read() ([]byte, error) {
	if c.closed || c.pointer >= len(c.data) {
		return nil, io.EOF
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (*FragmentClient) Remote() net.Addr {
	return nil
}

func (c *FragmentClient) Close() error {
	c.closed = true
	return nil
}

// Split cuts the data into pieces of n bytes at most. The last piece may be shorter.
func Split(data []byte, n int) (parts [][]byte) {
	for i := 0; i < len(data); i += n {
		end := i + n
		if end > len(data) {
			end = len(data)
		}

		parts = append(parts, data[i:end])
	}

	return parts
}

// SinkholeWriter records everything written into it.
type SinkholeWriter struct {
	Data []byte
}

func NewSinkholeWriter() *SinkholeWriter {
	return new(SinkholeWriter)
}

func (s *SinkholeWriter) Write(b []byte) error {
	s.Data = append(s.Data, b...)
	return nil
}

// ClosedWriter acts like a connection closed by the peer after Limit successful writes.
type ClosedWriter struct {
	SinkholeWriter
	Limit  int
	writes int
}

func NewClosedWriter(limit int) *ClosedWriter {
	return &ClosedWriter{Limit: limit}
}

func (c *ClosedWriter) Write(b []byte) error {
	if c.writes >= c.Limit {
		return net.ErrClosed
	}

	c.writes++
	return c.SinkholeWriter.Write(b)
}

// Writes returns the number of writes that went through.
func (c *ClosedWriter) Writes() int {
	return c.writes
}
