package httptest

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/httpfromtcp/http/headers"
	"github.com/indigo-web/utils/uf"
)

// Response is a response as it is seen by a client.
type Response struct {
	Proto   string
	Code    int
	Status  string
	Headers *headers.Headers
	Body    string
	// Trailers are filled only for chunked responses.
	Trailers *headers.Headers
}

// Parse parses a complete response, decoding the chunked body if necessary.
func Parse(raw string) (response Response, err error) {
	var found bool
	response.Headers = headers.New()
	response.Trailers = headers.New()

	response.Proto, raw, found = strings.Cut(raw, " ")
	if !found || len(raw) == 0 {
		return response, fmt.Errorf("bad status line: lacking code and status")
	}

	var code string
	code, raw, found = strings.Cut(raw, " ")
	if !found {
		return response, fmt.Errorf("bad status line: lacking reason phrase")
	}

	response.Code, err = strconv.Atoi(code)
	if err != nil {
		return response, err
	}

	response.Status, raw, found = strings.Cut(raw, "\r\n")
	if !found {
		return response, fmt.Errorf("bad response: only status line is presented")
	}

	n, done, err := response.Headers.Parse([]byte(raw))
	if err != nil {
		return response, err
	}

	if !done {
		return response, fmt.Errorf("bad response: incomplete headers")
	}

	response.Body, err = processBody(&response, raw[n:])

	return response, err
}

func processBody(response *Response, data string) (string, error) {
	if te, found := response.Headers.Get("transfer-encoding"); found {
		if te != "chunked" {
			return "", fmt.Errorf("httptest: cannot process encodings: %s", te)
		}

		return processChunkedBody(response, data)
	}

	cl, found := response.Headers.Get("content-length")
	if !found {
		if response.Headers.Value("connection") == "close" {
			return data, nil
		}

		if len(data) == 0 {
			return "", nil
		}

		return "", fmt.Errorf("bad response: neither Transfer-Encoding or Content-Length are presented")
	}

	length, err := strconv.Atoi(cl)
	if err != nil {
		return "", err
	}

	if len(data) != length {
		return "", fmt.Errorf("bad response: declared %d bytes of body, got %d", length, len(data))
	}

	return data, nil
}

func processChunkedBody(response *Response, data string) (string, error) {
	var buff []byte
	parser := chunkedbody.NewParser(chunkedbody.DefaultSettings())
	raw := []byte(data)

	for len(raw) > 0 {
		chunk, extra, err := parser.Parse(raw, false)
		buff = append(buff, chunk...)

		switch {
		case err == nil:
			raw = extra
		case errors.Is(err, io.EOF):
			return string(buff), parseTrailers(response, extra)
		default:
			return "", fmt.Errorf("bad response: bad chunked body: %s", err)
		}
	}

	return "", fmt.Errorf("bad response: chunked body isn't terminated")
}

func parseTrailers(response *Response, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	n, done, err := response.Trailers.Parse(data)
	switch {
	case err != nil:
		return err
	case !done:
		return fmt.Errorf("bad response: incomplete trailers: %s", uf.B2S(data))
	case n != len(data):
		return fmt.Errorf("bad response: extra data after trailers: %s", uf.B2S(data[n:]))
	}

	return nil
}
