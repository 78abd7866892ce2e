package http1

import (
	"errors"
	"fmt"
	"io"

	"github.com/indigo-web/httpfromtcp/config"
	"github.com/indigo-web/httpfromtcp/http"
	"github.com/indigo-web/httpfromtcp/http/status"
)

// Reader is the input half of a connection.
type Reader interface {
	// Read returns the next fragment of data. It is valid only until the next call.
	Read() ([]byte, error)
}

// ReadRequest reads a single request from the stream. Every fragment read is appended to
// the buffer, which is then fed to the parser starting at the first unconsumed byte,
// until the parser stops consuming or the request is done. If the stream ends before
// the request is complete, status.ErrEndOfStream is returned.
func ReadRequest(reader Reader, cfg *config.Config) (*http.Request, error) {
	var (
		request = http.NewRequest()
		parser  = NewParser(request, cfg)
		buff    = make([]byte, 0, cfg.NET.ReadBufferSize)
		offset  int
	)

	for {
		data, readErr := reader.Read()
		buff = append(buff, data...)

		for {
			n, err := parser.Parse(buff[offset:])
			if err != nil {
				return nil, err
			}

			offset += n
			if request.State == http.StateDone {
				return request, nil
			}

			if n == 0 {
				break
			}
		}

		if offset == len(buff) {
			// nothing is pending, so the buffer can be safely reused, as neither
			// headers nor the body keep references to it
			buff, offset = buff[:0], 0
		}

		switch {
		case readErr == nil:
		case errors.Is(readErr, io.EOF):
			return nil, status.ErrEndOfStream
		default:
			return nil, fmt.Errorf("%w: %w", status.ErrEndOfStream, readErr)
		}
	}
}
