package httpfromtcp

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/indigo-web/httpfromtcp/config"
	"github.com/indigo-web/httpfromtcp/http/method"
	"github.com/indigo-web/httpfromtcp/internal/server/http"
	"github.com/indigo-web/httpfromtcp/internal/server/tcp"
	"github.com/indigo-web/httpfromtcp/router"
	"github.com/rs/zerolog"
)

// ErrShutdown is returned by Serve after the App was stopped.
var ErrShutdown = tcp.ErrShutdown

var errNotRunning = errors.New("httpfromtcp: app isn't running")

// App serves HTTP/1.1 requests, one per connection.
type App struct {
	addr   string
	cfg    *config.Config
	logger zerolog.Logger
	router *router.Router
	hooks  hooks

	mu     sync.Mutex
	server *tcp.Server
}

// New returns a new App instance, listening on the addr once served.
func New(addr string) *App {
	return &App{
		addr:   addr,
		cfg:    config.Default(),
		logger: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
		router: router.New(),
	}
}

// Tune replaces the default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger replaces the default logger, which writes human-readable lines to stderr.
func (a *App) Logger(logger zerolog.Logger) *App {
	a.logger = logger
	return a
}

// Route registers the handler for the exact path. Registering the same route twice panics.
func (a *App) Route(m method.Method, path string, handler router.Handler) *App {
	if err := a.router.Route(m, path, handler); err != nil {
		panic(fmt.Errorf("httpfromtcp: %w", err))
	}

	return a
}

// Prefix registers the handler for all paths starting with the prefix.
func (a *App) Prefix(m method.Method, prefix string, handler router.Handler) *App {
	if err := a.router.Prefix(m, prefix, handler); err != nil {
		panic(fmt.Errorf("httpfromtcp: %w", err))
	}

	return a
}

// NotFound replaces the handler of requests matching no route.
func (a *App) NotFound(handler router.Handler) *App {
	a.router.NotFoundHandler(handler)
	return a
}

// NotifyOnStart calls the callback at the moment, when the listener is ready to accept
// connections.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when the server is down and all the
// connections are closed.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Serve starts listening and blocks until the App is stopped, returning ErrShutdown in
// that case.
func (a *App) Serve() error {
	sock, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}

	httpServer := http.NewServer(a.router, a.cfg, a.logger)
	server := tcp.NewServer(sock, func(conn net.Conn) {
		client := tcp.NewClient(
			conn, a.cfg.NET.ReadTimeout.Std(), make([]byte, a.cfg.NET.ReadBufferSize),
		)
		httpServer.Run(client)
	})

	a.mu.Lock()
	a.server = server
	a.mu.Unlock()

	a.logger.Info().Str("addr", sock.Addr().String()).Msg("listening")
	callIfNotNil(a.hooks.OnStart)
	err = server.Start()
	a.logger.Info().Err(err).Msg("stopped")
	callIfNotNil(a.hooks.OnStop)

	return err
}

// Addr returns the address the App listens on, or nil if it isn't served.
func (a *App) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return nil
	}

	return a.server.Addr()
}

// Stop closes the listener and all the connections immediately. Serve returns as soon
// as all the connection handlers are done.
func (a *App) Stop() error {
	server, err := a.runningServer()
	if err != nil {
		return err
	}

	return server.Stop()
}

// GracefulStop closes the listener, but lets the connections be served till the end.
func (a *App) GracefulStop() error {
	server, err := a.runningServer()
	if err != nil {
		return err
	}

	return server.GracefulShutdown()
}

func (a *App) runningServer() (*tcp.Server, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return nil, errNotRunning
	}

	return a.server, nil
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
