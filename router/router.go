package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/indigo-web/httpfromtcp/http"
	"github.com/indigo-web/httpfromtcp/http/method"
	"github.com/indigo-web/httpfromtcp/http/status"
)

// Handler writes the response for the request. A returned error is answered with the
// corresponding status code, if the head wasn't sent yet.
type Handler func(request *http.Request, response *http.Response) error

type prefixRoute struct {
	prefix  string
	method  method.Method
	handler Handler
}

// Router matches requests by the method and the path of the target. Exact routes have
// a priority over prefixed ones, the longest prefix wins.
type Router struct {
	routes   map[string]map[method.Method]Handler
	prefixes []prefixRoute
	notFound Handler
	onError  ErrorHandler
}

func New() *Router {
	return &Router{
		routes:   make(map[string]map[method.Method]Handler),
		notFound: NotFound,
		onError:  DefaultErrorHandler,
	}
}

// Route registers the handler for the exact path.
func (r *Router) Route(m method.Method, path string, handler Handler) error {
	path = stripTrailingSlash(path)
	methodsMap := r.routes[path]
	if methodsMap == nil {
		methodsMap = make(map[method.Method]Handler)
		r.routes[path] = methodsMap
	}

	if _, ok := methodsMap[m]; ok {
		return fmt.Errorf("route already registered: %s %s", m, path)
	}

	methodsMap[m] = handler
	return nil
}

// Prefix registers the handler for every path starting with the prefix.
func (r *Router) Prefix(m method.Method, prefix string, handler Handler) error {
	for _, route := range r.prefixes {
		if route.prefix == prefix && route.method == m {
			return fmt.Errorf("prefix already registered: %s %s", m, prefix)
		}
	}

	r.prefixes = append(r.prefixes, prefixRoute{
		prefix:  prefix,
		method:  m,
		handler: handler,
	})
	sort.SliceStable(r.prefixes, func(i, j int) bool {
		return len(r.prefixes[i].prefix) > len(r.prefixes[j].prefix)
	})

	return nil
}

// NotFoundHandler replaces the handler for requests matching no route.
func (r *Router) NotFoundHandler(handler Handler) *Router {
	r.notFound = handler
	return r
}

// ErrorHandler replaces the way handler errors are answered.
func (r *Router) ErrorHandler(handler ErrorHandler) *Router {
	r.onError = handler
	return r
}

// Lookup returns the handler for the method and the request target. The query is
// ignored.
func (r *Router) Lookup(m method.Method, target string) (Handler, bool) {
	path, _, _ := strings.Cut(target, "?")

	if handler, ok := r.routes[stripTrailingSlash(path)][m]; ok {
		return handler, true
	}

	for _, route := range r.prefixes {
		if route.method == m && strings.HasPrefix(path, route.prefix) {
			return route.handler, true
		}
	}

	return nil, false
}

// OnRequest dispatches the request and answers errors of the handler.
func (r *Router) OnRequest(request *http.Request, response *http.Response) error {
	handler, found := r.Lookup(request.Line.Method, request.Line.Target)
	if !found {
		handler = r.notFound
	}

	if err := handler(request, response); err != nil {
		return r.OnError(response, err)
	}

	return nil
}

// OnError answers the error, unless something was written already. In that case the
// error is returned back.
func (r *Router) OnError(response *http.Response, err error) error {
	if response.HeadSent() {
		return err
	}

	return r.onError(response, err)
}

func stripTrailingSlash(path string) string {
	if len(path) > 1 && path[len(path)-1] == '/' {
		return path[:len(path)-1]
	}

	return path
}

// NotFound answers with 404.
func NotFound(*http.Request, *http.Response) error {
	return status.ErrNotFound
}
