package http

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"strconv"

	"github.com/indigo-web/httpfromtcp/http/headers"
	"github.com/indigo-web/httpfromtcp/http/mime"
	"github.com/indigo-web/httpfromtcp/http/status"
	"github.com/indigo-web/httpfromtcp/internal/server/tcp"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

const (
	protocol = "HTTP/1.1 "

	trailerSHA256 = "X-Content-SHA256"
	trailerLength = "X-Content-Length"

	// DefaultStreamBufferSize is used by Stream unless another one was set.
	DefaultStreamBufferSize = 4096
	// minimalStreamBufferSize must fit the chunk-length prefix, two CRLFs and at least
	// a single byte of payload.
	minimalStreamBufferSize = 16
	preallocRespHeaders     = 7
)

var (
	crlf             = []byte("\r\n")
	chunkedFinalizer = []byte("0\r\n\r\n")

	ErrNotChunked      = errors.New("response isn't in chunked mode")
	ErrChunkedFinished = errors.New("chunked body is already finished")
)

// Writer is the output byte sink of a single connection.
type Writer interface {
	Write([]byte) error
}

// Response is a response session owning the output of exactly one request-response cycle.
// Status code and headers are accumulated until the head is flushed, after which the
// response becomes append-only. Writes into a closed connection are silently dropped.
type Response struct {
	writer     Writer
	code       status.Code
	headers    *headers.Headers
	buff       []byte
	streamBuff []byte
	hash       hash.Hash
	written    int64
	headSent   bool
	chunked    bool
	finished   bool
	closed     bool
}

// NewResponse returns a new instance of the Response object with status code set to 200 OK.
func NewResponse(writer Writer) *Response {
	return &Response{
		writer:  writer,
		code:    status.OK,
		headers: headers.NewPrealloc(preallocRespHeaders),
	}
}

// StreamBuffer sets the size of the buffer used by Stream. It limits how much of the
// upstream data may be read in advance before it's written out.
func (r *Response) StreamBuffer(size int) *Response {
	if size < minimalStreamBufferSize {
		size = minimalStreamBufferSize
	}

	r.streamBuff = make([]byte, size)
	return r
}

// SetCode sets the response status code.
func (r *Response) SetCode(code status.Code) error {
	if r.headSent {
		return status.ErrHeadersSent
	}

	r.code = code
	return nil
}

// StatusCode returns the current status code.
func (r *Response) StatusCode() status.Code {
	return r.code
}

// SetHeader adds the header. If it's already set, the value is appended via a comma.
func (r *Response) SetHeader(key, value string) error {
	if r.headSent {
		return status.ErrHeadersSent
	}

	r.headers.Set(key, value)
	return nil
}

// ReplaceHeader overrides the header value.
func (r *Response) ReplaceHeader(key, value string) error {
	if r.headSent {
		return status.ErrHeadersSent
	}

	r.headers.Replace(key, value)
	return nil
}

// Header returns the value of a header set so far.
func (r *Response) Header(key string) (string, bool) {
	return r.headers.Get(key)
}

func (r *Response) HeadSent() bool {
	return r.headSent
}

// Closed reports whether the connection was found closed while writing.
func (r *Response) Closed() bool {
	return r.closed
}

// WriteHead writes the status line and headers exactly as they are set, without adding
// any defaults. The body must be written according to the headers by the caller.
func (r *Response) WriteHead() error {
	if r.headSent {
		return status.ErrHeadersSent
	}

	r.headSent = true
	r.buff = r.renderHead(r.buff[:0])

	return r.write(r.buff)
}

// Bytes writes the whole response in a fixed-length mode: the status line, headers
// with Content-Length and the body in a single write.
func (r *Response) Bytes(contentType mime.MIME, body []byte) error {
	if r.headSent {
		return status.ErrHeadersSent
	}

	r.applyDefaults(
		headers.Pair{Key: "Content-Length", Value: strconv.Itoa(len(body))},
		headers.Pair{Key: "Connection", Value: "close"},
		headers.Pair{Key: "Content-Type", Value: contentType},
	)

	r.headSent = true
	r.buff = append(r.renderHead(r.buff[:0]), body...)

	return r.write(r.buff)
}

// Text writes a text/plain body.
func (r *Response) Text(body string) error {
	return r.Bytes(mime.Plain, uf.S2B(body))
}

// HTML writes a text/html body.
func (r *Response) HTML(body string) error {
	return r.Bytes(mime.HTML, uf.S2B(body))
}

// JSON serializes the model and writes it as an application/json body.
func (r *Response) JSON(model any) error {
	body, err := json.ConfigCompatibleWithStandardLibrary.Marshal(model)
	if err != nil {
		return err
	}

	return r.Bytes(mime.JSON, body)
}

// StartChunked writes the head of a chunked response. Its trailers are announced in
// advance, because their values can be known only after the whole body is written.
func (r *Response) StartChunked(contentType mime.MIME) error {
	if r.headSent {
		return status.ErrHeadersSent
	}

	r.applyDefaults(
		headers.Pair{Key: "Transfer-Encoding", Value: "chunked"},
		headers.Pair{Key: "Connection", Value: "close"},
		headers.Pair{Key: "Content-Type", Value: contentType},
		headers.Pair{Key: "Trailer", Value: trailerSHA256 + ", " + trailerLength},
	)

	r.headSent = true
	r.chunked = true
	r.hash = sha256.New()
	r.written = 0
	r.buff = r.renderHead(r.buff[:0])

	return r.write(r.buff)
}

// WriteChunk writes the data as a single chunk. Empty data is skipped, as a zero-length
// chunk terminates the body.
func (r *Response) WriteChunk(data []byte) (n int, err error) {
	switch {
	case !r.chunked:
		return 0, ErrNotChunked
	case r.finished:
		return 0, ErrChunkedFinished
	case len(data) == 0:
		return 0, nil
	}

	r.account(data)
	r.buff = strconv.AppendUint(r.buff[:0], uint64(len(data)), 16)
	r.buff = append(r.buff, crlf...)
	r.buff = append(r.buff, data...)
	r.buff = append(r.buff, crlf...)

	return len(data), r.write(r.buff)
}

// Write implements io.Writer. Every call results in exactly one chunk.
func (r *Response) Write(b []byte) (n int, err error) {
	return r.WriteChunk(b)
}

// FinishChunked terminates the body and sends the trailers: the hex-encoded SHA-256 of
// the body and its length in bytes.
func (r *Response) FinishChunked() error {
	switch {
	case !r.chunked:
		return ErrNotChunked
	case r.finished:
		return ErrChunkedFinished
	}

	r.finished = true
	trailers := headers.NewPrealloc(2).
		Set(trailerSHA256, r.ContentSHA256()).
		Set(trailerLength, strconv.FormatInt(r.written, 10))
	r.buff = trailers.AppendTo(append(r.buff[:0], chunkedFinalizer...))

	return r.write(r.buff)
}

// Stream relays the reader as a chunked body, one chunk per read. The next read happens
// only after the previous chunk was written, so a slow client slows down the reading,
// too. Reading stops as soon as the client is gone.
func (r *Response) Stream(contentType mime.MIME, src io.Reader) error {
	const (
		hexValueOffset = 8
		crlfSize       = 1 /* CR */ + 1 /* LF */
		buffOffset     = hexValueOffset + crlfSize
	)

	if err := r.StartChunked(contentType); err != nil {
		return err
	}

	if len(r.streamBuff) == 0 {
		r.StreamBuffer(DefaultStreamBufferSize)
	}

	buff := r.streamBuff

	for !r.closed {
		n, err := src.Read(buff[buffOffset : len(buff)-crlfSize])

		if n > 0 {
			payload := buff[buffOffset : buffOffset+n]
			r.account(payload)
			// the chunk length is rendered in-place right before the payload, so the
			// whole chunk goes out in a single write without copying the payload
			length := strconv.AppendUint(buff[:0], uint64(n), 16)
			blankSpace := hexValueOffset - len(length)
			copy(buff[blankSpace:], length)
			copy(buff[hexValueOffset:], crlf)
			copy(buff[buffOffset+n:], crlf)

			if werr := r.write(buff[blankSpace : buffOffset+n+crlfSize]); werr != nil {
				return werr
			}
		}

		switch err {
		case nil:
		case io.EOF:
			return r.FinishChunked()
		default:
			return err
		}
	}

	return nil
}

// ContentSHA256 returns the hex-encoded hash of the chunked body written so far.
func (r *Response) ContentSHA256() string {
	if r.hash == nil {
		return ""
	}

	return hex.EncodeToString(r.hash.Sum(nil))
}

// Written returns the number of chunked body bytes written so far.
func (r *Response) Written() int64 {
	return r.written
}

func (r *Response) account(data []byte) {
	// hash.Hash never returns an error
	_, _ = r.hash.Write(data)
	r.written += int64(len(data))
}

// applyDefaults puts the framing headers in front of the user-defined ones. User-defined
// headers override defaults, except Content-Length and Transfer-Encoding, which
// must match the actual framing.
func (r *Response) applyDefaults(defaults ...headers.Pair) {
	merged := headers.NewPrealloc(len(defaults) + r.headers.Len())

	for _, pair := range defaults {
		if r.headers.Has(pair.Key) && !isFraming(pair.Key) {
			continue
		}

		merged.Set(pair.Key, pair.Value)
	}

	for key, value := range r.headers.Iter() {
		if isFraming(key) {
			continue
		}

		merged.Set(key, value)
	}

	r.headers = merged
}

func (r *Response) renderHead(buff []byte) []byte {
	buff = append(buff, protocol...)
	buff = strconv.AppendUint(buff, uint64(r.code), 10)
	buff = append(buff, ' ')
	buff = append(buff, status.Text(r.code)...)
	buff = append(buff, crlf...)

	return r.headers.AppendTo(buff)
}

func (r *Response) write(b []byte) error {
	if r.closed {
		return nil
	}

	if err := r.writer.Write(b); err != nil {
		if tcp.IsClosed(err) {
			r.closed = true
			return nil
		}

		return err
	}

	return nil
}

func isFraming(key string) bool {
	return strcomp.EqualFold(key, "content-length") || strcomp.EqualFold(key, "transfer-encoding")
}
