package headers

import (
	"bytes"
	"iter"
	"strings"

	"github.com/indigo-web/httpfromtcp/http/status"
	"github.com/indigo-web/utils/strcomp"
)

var crlf = []byte("\r\n")

type Pair struct {
	Key, Value string
}

// Headers is an ordered storage of header fields. Lookups are case-insensitive and linear.
// Repeated names are never stored twice: their values are joined by a comma in arrival order.
type Headers struct {
	pairs []Pair
}

func New() *Headers {
	return new(Headers)
}

// NewPrealloc returns an instance with pre-allocated underlying storage.
func NewPrealloc(n int) *Headers {
	return &Headers{
		pairs: make([]Pair, 0, n),
	}
}

// NewFromMap returns a new instance filled with the given values. As maps are unordered,
// the insertion order of keys is unspecified. Values of a single key are joined in order.
func NewFromMap(m map[string][]string) *Headers {
	h := NewPrealloc(len(m))

	for key, values := range m {
		for _, value := range values {
			h.Set(key, value)
		}
	}

	return h
}

// Parse consumes all the complete header lines from data. It stops without consuming at
// the first incomplete line and reports done=false, so the caller can retry with more bytes
// later on. A blank line finishes the header block: its CRLF is consumed and done=true is
// returned.
func (h *Headers) Parse(data []byte) (n int, done bool, err error) {
	for {
		lf := bytes.Index(data[n:], crlf)
		switch lf {
		case -1:
			return n, false, nil
		case 0:
			return n + len(crlf), true, nil
		}

		if err = h.parseLine(data[n : n+lf]); err != nil {
			return n, false, err
		}

		n += lf + len(crlf)
	}
}

func (h *Headers) parseLine(line []byte) error {
	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		return status.ErrMalformedHeaders
	}

	// "Name : value" is prohibited, as whitespace between the field name and the colon
	// isn't allowed.
	if colon > 0 && line[colon-1] == ' ' {
		return status.ErrMalformedHeaders
	}

	name := strings.TrimLeft(string(line[:colon]), " \t")
	if !IsToken(name) {
		return status.ErrInvalidHeaderName
	}

	value := strings.Trim(string(line[colon+1:]), " \t")
	h.Set(strings.ToLower(name), value)

	return nil
}

// Get returns the value and a bool, indicating whether the value was found. If it wasn't,
// it'll be an empty string.
func (h *Headers) Get(key string) (value string, found bool) {
	if i := h.index(key); i != -1 {
		return h.pairs[i].Value, true
	}

	return "", false
}

// Value returns the value corresponding to the key or an empty string.
func (h *Headers) Value(key string) string {
	value, _ := h.Get(key)
	return value
}

// Has indicates, whether there's an entry of the key.
func (h *Headers) Has(key string) bool {
	return h.index(key) != -1
}

// Set inserts the key. If it already exists, the value is appended to the present one
// via a comma.
func (h *Headers) Set(key, value string) *Headers {
	if i := h.index(key); i != -1 {
		h.pairs[i].Value += "," + value
		return h
	}

	h.pairs = append(h.pairs, Pair{Key: key, Value: value})
	return h
}

// Replace overrides the value of the key, keeping its position. Absent keys are inserted.
func (h *Headers) Replace(key, value string) *Headers {
	if i := h.index(key); i != -1 {
		h.pairs[i].Value = value
		return h
	}

	h.pairs = append(h.pairs, Pair{Key: key, Value: value})
	return h
}

func (h *Headers) Delete(key string) *Headers {
	if i := h.index(key); i != -1 {
		h.pairs = append(h.pairs[:i], h.pairs[i+1:]...)
	}

	return h
}

// Iter returns an iterator over the pairs in insertion order.
func (h *Headers) Iter() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range h.pairs {
			if !yield(pair.Key, pair.Value) {
				break
			}
		}
	}
}

// Len returns a number of stored pairs.
func (h *Headers) Len() int {
	return len(h.pairs)
}

func (h *Headers) Empty() bool {
	return h.Len() == 0
}

// Clear all the entries. However, all the allocated space won't be freed.
func (h *Headers) Clear() *Headers {
	h.pairs = h.pairs[:0]
	return h
}

// Expose exposes the underlying pairs slice.
func (h *Headers) Expose() []Pair {
	return h.pairs
}

// AppendTo serializes the headers as a header block, terminated by an empty line.
func (h *Headers) AppendTo(buff []byte) []byte {
	for _, pair := range h.pairs {
		buff = append(buff, pair.Key...)
		buff = append(buff, ": "...)
		buff = append(buff, pair.Value...)
		buff = append(buff, crlf...)
	}

	return append(buff, crlf...)
}

func (h *Headers) index(key string) int {
	for i, pair := range h.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			return i
		}
	}

	return -1
}
