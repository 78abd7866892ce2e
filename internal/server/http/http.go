package http

import (
	"errors"
	"net"
	"time"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/httpfromtcp/config"
	"github.com/indigo-web/httpfromtcp/http"
	"github.com/indigo-web/httpfromtcp/http/status"
	"github.com/indigo-web/httpfromtcp/internal/server/tcp"
	"github.com/indigo-web/httpfromtcp/internal/transport/http1"
	"github.com/rs/zerolog"
)

const connIDLength = 8

// Router dispatches requests to their handlers.
type Router interface {
	OnRequest(request *http.Request, response *http.Response) error
	// OnError answers an error happened before the request could be dispatched.
	OnError(response *http.Response, err error) error
}

// Server serves exactly one request per connection.
type Server struct {
	router Router
	cfg    *config.Config
	logger zerolog.Logger
}

func NewServer(router Router, cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{
		router: router,
		cfg:    cfg,
		logger: logger,
	}
}

// Run reads a single request from the client, answers it and closes the connection.
func (s *Server) Run(client tcp.Client) {
	defer func() {
		_ = client.Close()
	}()

	logger := s.logger.With().
		Str("conn", uniuri.NewLen(connIDLength)).
		Str("remote", remoteAddr(client.Remote())).
		Logger()

	s.HandleRequest(client, logger)
}

// HandleRequest reads the request and writes the response. Parsing errors are answered
// with their status code, unless the client is already gone.
func (s *Server) HandleRequest(client tcp.Client, logger zerolog.Logger) {
	response := http.NewResponse(client).StreamBuffer(s.cfg.NET.StreamBufferSize)

	request, err := http1.ReadRequest(client, s.cfg)
	if err != nil {
		if errors.Is(err, status.ErrEndOfStream) {
			logger.Debug().Err(err).Msg("connection closed before the request was complete")
			return
		}

		logger.Warn().Err(err).Uint16("status", uint16(status.CodeOf(err))).Msg("bad request")
		if err = s.router.OnError(response, err); err != nil {
			logger.Error().Err(err).Msg("failed to answer a bad request")
		}

		return
	}

	start := time.Now()
	err = s.router.OnRequest(request, response)

	event := logger.Info()
	if err != nil {
		event = logger.Error().Err(err)
	}

	event.
		Stringer("method", request.Line.Method).
		Str("target", request.Line.Target).
		Uint16("status", uint16(response.StatusCode())).
		Bool("client_gone", response.Closed()).
		Dur("took", time.Since(start)).
		Msg("request served")
}

func remoteAddr(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}

	return addr.String()
}
