package http1

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/indigo-web/httpfromtcp/http"
	"github.com/indigo-web/httpfromtcp/http/method"
	"github.com/indigo-web/httpfromtcp/http/status"
)

const supportedProtocol = "HTTP/1.1"

var crlf = []byte("\r\n")

// parseRequestLine parses the request line, if it's complete. Otherwise, nothing is
// consumed and nil line is returned.
func parseRequestLine(data []byte) (line *http.RequestLine, n int, err error) {
	lf := bytes.Index(data, crlf)
	if lf == -1 {
		return nil, 0, nil
	}

	parts := strings.Split(string(data[:lf]), " ")
	if len(parts) != 3 || len(parts[1]) == 0 {
		return nil, 0, status.ErrMalformedRequestLine
	}

	m := method.Parse(parts[0])
	if m == method.Unknown {
		return nil, 0, fmt.Errorf("%w: %q", status.ErrInvalidMethod, parts[0])
	}

	if parts[2] != supportedProtocol {
		return nil, 0, fmt.Errorf("%w: %q", status.ErrUnsupportedHTTPVersion, parts[2])
	}

	return &http.RequestLine{
		Method:      m,
		Target:      parts[1],
		HTTPVersion: strings.TrimPrefix(parts[2], "HTTP/"),
	}, lf + len(crlf), nil
}
