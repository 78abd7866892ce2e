package router

import (
	"github.com/indigo-web/httpfromtcp/http"
	"github.com/indigo-web/httpfromtcp/http/status"
)

// ErrorHandler answers an error. The head of the response is guaranteed to be unsent.
type ErrorHandler func(response *http.Response, err error) error

// DefaultErrorHandler answers with the status code of the error and its text as a body.
func DefaultErrorHandler(response *http.Response, err error) error {
	if setErr := response.SetCode(status.CodeOf(err)); setErr != nil {
		return setErr
	}

	return response.Text(err.Error())
}
