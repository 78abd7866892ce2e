package status

import "errors"

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrMalformedRequestLine   = NewError(BadRequest, "malformed request line")
	ErrInvalidMethod          = NewError(BadRequest, "invalid http method")
	ErrUnsupportedHTTPVersion = NewError(BadRequest, "unsupported http version")
	ErrMalformedHeaders       = NewError(BadRequest, "malformed headers")
	ErrInvalidHeaderName      = NewError(BadRequest, "invalid header name")
	ErrInvalidBody            = NewError(BadRequest, "invalid body")
	ErrEndOfStream            = NewError(BadRequest, "stream ended before the request was complete")

	ErrNotFound = NewError(NotFound, "not found")

	ErrHeaderFieldsTooLarge = NewError(RequestHeaderFieldsTooLarge, "too large request head")
	ErrBodyTooLarge         = NewError(RequestEntityTooLarge, "request body is too large")
	ErrRequestDone          = NewError(InternalServerError, "trying to parse a request in a done state")
	ErrHeadersSent          = NewError(InternalServerError, "response head is already sent")
)

// CodeOf returns the status code an error must be answered with. Errors that aren't
// HTTPError (possibly wrapped) are considered internal ones.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}
