package http1

import (
	"fmt"

	"github.com/indigo-web/httpfromtcp/config"
	"github.com/indigo-web/httpfromtcp/http"
	"github.com/indigo-web/httpfromtcp/http/status"
)

// Parser is an incremental request parser. It is fed with the unconsumed part of the
// input over and over again, every time more data arrives. Every call either consumes
// something, changes the request state, or reports that more data is required by
// consuming nothing.
type Parser struct {
	request     *http.Request
	headSize    int
	maxHeadSize int
	maxBodySize int
}

func NewParser(request *http.Request, cfg *config.Config) *Parser {
	return &Parser{
		request:     request,
		maxHeadSize: cfg.Headers.MaxSize,
		maxBodySize: cfg.Body.MaxSize,
	}
}

// Parse processes the data according to the current request state and returns the number
// of consumed bytes. Once the request is done, every call fails.
func (p *Parser) Parse(data []byte) (n int, err error) {
	switch p.request.State {
	case http.StateInit:
		return p.requestLine(data)
	case http.StateHeaders:
		return p.headers(data)
	case http.StateBody:
		return p.body(data)
	case http.StateDone:
		return 0, status.ErrRequestDone
	default:
		panic(fmt.Sprintf("BUG: unexpected state: %v", p.request.State))
	}
}

func (p *Parser) requestLine(data []byte) (int, error) {
	line, n, err := parseRequestLine(data)
	if err != nil {
		return 0, err
	}

	if line == nil {
		return 0, p.checkHeadSize(len(data))
	}

	p.headSize += n
	p.request.Line = line
	p.request.State = http.StateHeaders

	return n, nil
}

func (p *Parser) headers(data []byte) (int, error) {
	n, done, err := p.request.Headers.Parse(data)
	if err != nil {
		return 0, err
	}

	p.headSize += n
	if done {
		p.request.State = http.StateBody
		return n, p.checkHeadSize(0)
	}

	return n, p.checkHeadSize(len(data) - n)
}

func (p *Parser) body(data []byte) (int, error) {
	length, present, err := p.request.ContentLength()
	if err != nil {
		return 0, fmt.Errorf("%w: bad content-length", err)
	}

	if !present {
		// no Content-Length means no body. Whatever is left in the stream is not ours
		p.request.Body = []byte{}
		p.request.State = http.StateDone
		return 0, nil
	}

	if length > p.maxBodySize {
		return 0, status.ErrBodyTooLarge
	}

	switch {
	case len(data) < length:
		return 0, nil
	case len(data) > length:
		return 0, fmt.Errorf("%w: body exceeds content-length", status.ErrInvalidBody)
	}

	p.request.Body = append(make([]byte, 0, length), data...)
	p.request.State = http.StateDone

	return length, nil
}

// checkHeadSize fails if the request line and headers, including the pending bytes
// which are going to be a part of them, are too large.
func (p *Parser) checkHeadSize(pending int) error {
	if p.headSize+pending > p.maxHeadSize {
		return status.ErrHeaderFieldsTooLarge
	}

	return nil
}
