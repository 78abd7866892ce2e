package http

import (
	"strconv"

	"github.com/indigo-web/httpfromtcp/http/headers"
	"github.com/indigo-web/httpfromtcp/http/method"
	"github.com/indigo-web/httpfromtcp/http/status"
)

// State represents the progress of a request's parsing.
type State uint8

const (
	StateInit State = iota
	StateHeaders
	StateBody
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateHeaders:
		return "headers"
	case StateBody:
		return "body"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// RequestLine is produced once per request from exactly one line of input and is never
// mutated afterwards.
type RequestLine struct {
	Method method.Method
	// Target is the raw request target, path and query included. It isn't decoded.
	Target string
	// HTTPVersion holds the version without the scheme, e.g. "1.1".
	HTTPVersion string
}

// Request represents an HTTP request. It is owned by a single connection and must never
// be shared with other ones.
type Request struct {
	// Line is nil until the request line is parsed.
	Line *RequestLine
	// Headers hold lower-cased header names. Lookup is case-insensitive anyway.
	Headers *headers.Headers
	// Body is nil until it is determined. A request without Content-Length has an empty
	// non-nil body.
	Body  []byte
	State State
}

func NewRequest() *Request {
	return &Request{
		Headers: headers.New(),
		State:   StateInit,
	}
}

// ContentLength returns the declared body length. Present is false if there's no
// Content-Length header.
func (r *Request) ContentLength() (length int, present bool, err error) {
	value, found := r.Headers.Get("content-length")
	if !found {
		return 0, false, nil
	}

	length, err = strconv.Atoi(value)
	if err != nil || length < 0 {
		return 0, true, status.ErrInvalidBody
	}

	return length, true, nil
}
