package http

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/indigo-web/httpfromtcp/http/mime"
	"github.com/indigo-web/httpfromtcp/http/status"
	"github.com/indigo-web/httpfromtcp/internal/httptest"
	"github.com/indigo-web/httpfromtcp/internal/server/tcp/dummy"
	"github.com/stretchr/testify/require"
)

func sha256hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestResponse_Fixed(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		writer := dummy.NewSinkholeWriter()
		require.NoError(t, NewResponse(writer).Text("Hello, world!"))

		want := "HTTP/1.1 200 OK\r\n" +
			"Content-Length: 13\r\n" +
			"Connection: close\r\n" +
			"Content-Type: text/plain\r\n" +
			"\r\n" +
			"Hello, world!"
		require.Equal(t, want, string(writer.Data))
	})

	t.Run("status codes", func(t *testing.T) {
		for _, tc := range []struct {
			Code status.Code
			Line string
		}{
			{status.OK, "HTTP/1.1 200 OK\r\n"},
			{status.BadRequest, "HTTP/1.1 400 Bad Request\r\n"},
			{status.NotFound, "HTTP/1.1 404 Not Found\r\n"},
			{status.InternalServerError, "HTTP/1.1 500 Internal Server Error\r\n"},
			{status.Created, "HTTP/1.1 201 \r\n"},
		} {
			writer := dummy.NewSinkholeWriter()
			response := NewResponse(writer)
			require.NoError(t, response.SetCode(tc.Code))
			require.NoError(t, response.HTML("<h1>hi</h1>"))
			require.True(t, strings.HasPrefix(string(writer.Data), tc.Line), string(writer.Data))
		}
	})

	t.Run("multibyte body", func(t *testing.T) {
		writer := dummy.NewSinkholeWriter()
		require.NoError(t, NewResponse(writer).Text("привет"))

		resp, err := httptest.Parse(string(writer.Data))
		require.NoError(t, err)
		require.Equal(t, "12", resp.Headers.Value("content-length"))
		require.Equal(t, "привет", resp.Body)
	})

	t.Run("user headers", func(t *testing.T) {
		writer := dummy.NewSinkholeWriter()
		response := NewResponse(writer)
		require.NoError(t, response.SetHeader("Content-Type", "text/html; charset=utf8"))
		require.NoError(t, response.SetHeader("Content-Length", "100500"))
		require.NoError(t, response.SetHeader("X-Custom", "a"))
		require.NoError(t, response.SetHeader("x-custom", "b"))
		require.NoError(t, response.Text("hello"))

		resp, err := httptest.Parse(string(writer.Data))
		require.NoError(t, err)
		require.Equal(t, "text/html; charset=utf8", resp.Headers.Value("content-type"))
		require.Equal(t, "5", resp.Headers.Value("content-length"))
		require.Equal(t, "a,b", resp.Headers.Value("x-custom"))
		require.Equal(t, "hello", resp.Body)
	})

	t.Run("json", func(t *testing.T) {
		writer := dummy.NewSinkholeWriter()
		require.NoError(t, NewResponse(writer).JSON(map[string]int{"answer": 42}))

		resp, err := httptest.Parse(string(writer.Data))
		require.NoError(t, err)
		require.Equal(t, mime.JSON, resp.Headers.Value("content-type"))
		require.JSONEq(t, `{"answer":42}`, resp.Body)
	})

	t.Run("head is sent only once", func(t *testing.T) {
		writer := dummy.NewSinkholeWriter()
		response := NewResponse(writer)
		require.NoError(t, response.Text("first"))
		require.True(t, response.HeadSent())

		require.ErrorIs(t, response.Text("second"), status.ErrHeadersSent)
		require.ErrorIs(t, response.SetCode(status.NotFound), status.ErrHeadersSent)
		require.ErrorIs(t, response.SetHeader("A", "b"), status.ErrHeadersSent)
		require.ErrorIs(t, response.ReplaceHeader("A", "b"), status.ErrHeadersSent)
		require.ErrorIs(t, response.WriteHead(), status.ErrHeadersSent)
		require.Equal(t, status.OK, response.StatusCode())
		require.NotContains(t, string(writer.Data), "second")
	})

	t.Run("raw head", func(t *testing.T) {
		writer := dummy.NewSinkholeWriter()
		response := NewResponse(writer)
		require.NoError(t, response.SetCode(status.NotFound))
		require.NoError(t, response.SetHeader("Content-Length", "0"))
		require.NoError(t, response.WriteHead())
		require.Equal(t, "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n", string(writer.Data))
	})
}

func TestResponse_Chunked(t *testing.T) {
	t.Run("wire format", func(t *testing.T) {
		writer := dummy.NewSinkholeWriter()
		response := NewResponse(writer)
		require.NoError(t, response.StartChunked(mime.Plain))
		n, err := response.WriteChunk([]byte("Hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.NoError(t, response.FinishChunked())

		want := "HTTP/1.1 200 OK\r\n" +
			"Transfer-Encoding: chunked\r\n" +
			"Connection: close\r\n" +
			"Content-Type: text/plain\r\n" +
			"Trailer: X-Content-SHA256, X-Content-Length\r\n" +
			"\r\n" +
			"5\r\nHello\r\n" +
			"0\r\n\r\n" +
			"X-Content-SHA256: 185f8db32271fe25f561a6fc938b2e264306ec304eda518007d1764826381969\r\n" +
			"X-Content-Length: 5\r\n" +
			"\r\n"
		require.Equal(t, want, string(writer.Data))
	})

	t.Run("round trip", func(t *testing.T) {
		writer := dummy.NewSinkholeWriter()
		response := NewResponse(writer)
		require.NoError(t, response.StartChunked(mime.Plain))

		parts := []string{"Hello", ", ", "", "мир", strings.Repeat("a", 300)}
		for _, part := range parts {
			_, err := io.WriteString(response, part)
			require.NoError(t, err)
		}
		require.NoError(t, response.FinishChunked())

		body := strings.Join(parts, "")
		resp, err := httptest.Parse(string(writer.Data))
		require.NoError(t, err)
		require.Equal(t, 200, resp.Code)
		require.Equal(t, body, resp.Body)
		require.Equal(t, sha256hex(body), resp.Trailers.Value("x-content-sha256"))
		require.Equal(t, "313", resp.Trailers.Value("x-content-length"))
		require.Equal(t, int64(len(body)), response.Written())
		require.Contains(t, string(writer.Data), "6\r\nмир\r\n")
		require.Contains(t, string(writer.Data), "12c\r\n")
	})

	t.Run("empty body", func(t *testing.T) {
		writer := dummy.NewSinkholeWriter()
		response := NewResponse(writer)
		require.NoError(t, response.StartChunked(mime.HTML))
		require.NoError(t, response.FinishChunked())

		resp, err := httptest.Parse(string(writer.Data))
		require.NoError(t, err)
		require.Empty(t, resp.Body)
		require.Equal(t, sha256hex(""), resp.Trailers.Value("x-content-sha256"))
		require.Equal(t, "0", resp.Trailers.Value("x-content-length"))
	})

	t.Run("misuse", func(t *testing.T) {
		response := NewResponse(dummy.NewSinkholeWriter())
		_, err := response.WriteChunk([]byte("a"))
		require.ErrorIs(t, err, ErrNotChunked)
		require.ErrorIs(t, response.FinishChunked(), ErrNotChunked)

		require.NoError(t, response.StartChunked(mime.Plain))
		require.ErrorIs(t, response.StartChunked(mime.Plain), status.ErrHeadersSent)
		require.NoError(t, response.FinishChunked())
		_, err = response.WriteChunk([]byte("a"))
		require.ErrorIs(t, err, ErrChunkedFinished)
		require.ErrorIs(t, response.FinishChunked(), ErrChunkedFinished)
	})
}

// trackingReader hands out the data in pieces and records how much had been written
// by the moment of every read.
type trackingReader struct {
	data   []byte
	piece  int
	writer *dummy.SinkholeWriter
	seen   []int
	err    error
}

func (t *trackingReader) Read(b []byte) (int, error) {
	t.seen = append(t.seen, len(t.writer.Data))

	if len(t.data) == 0 {
		if t.err != nil {
			return 0, t.err
		}

		return 0, io.EOF
	}

	n := min(len(b), t.piece, len(t.data))
	copy(b, t.data[:n])
	t.data = t.data[n:]

	return n, nil
}

func TestResponse_Stream(t *testing.T) {
	t.Run("relay", func(t *testing.T) {
		body := strings.Repeat("Hello, world! ", 100)
		writer := dummy.NewSinkholeWriter()
		response := NewResponse(writer)
		require.NoError(t, response.Stream(mime.Plain, strings.NewReader(body)))

		resp, err := httptest.Parse(string(writer.Data))
		require.NoError(t, err)
		require.Equal(t, body, resp.Body)
		require.Equal(t, sha256hex(body), resp.Trailers.Value("x-content-sha256"))
		require.Equal(t, "1400", resp.Trailers.Value("x-content-length"))
	})

	t.Run("small buffer", func(t *testing.T) {
		writer := dummy.NewSinkholeWriter()
		response := NewResponse(writer).StreamBuffer(1)
		require.NoError(t, response.Stream(mime.Plain, strings.NewReader("Hello, world!")))

		// the smallest buffer leaves room for 4 bytes of payload
		require.Contains(t, string(writer.Data), "4\r\nHell\r\n4\r\no, w\r\n4\r\norld\r\n1\r\n!\r\n0\r\n\r\n")
	})

	t.Run("backpressure", func(t *testing.T) {
		writer := dummy.NewSinkholeWriter()
		reader := &trackingReader{
			data:   []byte(strings.Repeat("x", 50)),
			piece:  10,
			writer: writer,
		}
		require.NoError(t, NewResponse(writer).Stream(mime.OctetStream, reader))

		// every read must happen only after the previous chunk was written out
		require.Len(t, reader.seen, 6)
		for i := 1; i < len(reader.seen); i++ {
			require.Greater(t, reader.seen[i], reader.seen[i-1])
		}
	})

	t.Run("upstream error", func(t *testing.T) {
		upstreamErr := errors.New("upstream is gone")
		writer := dummy.NewSinkholeWriter()
		reader := &trackingReader{
			data:   []byte("partial"),
			piece:  100,
			writer: writer,
			err:    upstreamErr,
		}
		response := NewResponse(writer)
		require.ErrorIs(t, response.Stream(mime.Plain, reader), upstreamErr)
		require.NotContains(t, string(writer.Data), "0\r\n\r\n")
	})

	t.Run("client is gone", func(t *testing.T) {
		writer := dummy.NewClosedWriter(1)
		reader := &trackingReader{
			data:   []byte(strings.Repeat("x", 100)),
			piece:  10,
			writer: &writer.SinkholeWriter,
		}
		response := NewResponse(writer)
		require.NoError(t, response.Stream(mime.Plain, reader))
		require.True(t, response.Closed())
		require.Equal(t, 1, writer.Writes())
		require.Len(t, reader.seen, 1)
	})
}

func TestResponse_ClosedWriter(t *testing.T) {
	writer := dummy.NewClosedWriter(0)
	response := NewResponse(writer)
	require.NoError(t, response.StartChunked(mime.Plain))
	require.True(t, response.Closed())

	n, err := response.WriteChunk([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, response.FinishChunked())
	require.Empty(t, writer.Data)
	require.Zero(t, writer.Writes())
}
