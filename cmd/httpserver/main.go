package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/indigo-web/httpfromtcp"
	"github.com/indigo-web/httpfromtcp/config"
	"github.com/indigo-web/httpfromtcp/http"
	"github.com/indigo-web/httpfromtcp/http/method"
	"github.com/indigo-web/httpfromtcp/http/mime"
	"github.com/indigo-web/httpfromtcp/http/status"
	"github.com/indigo-web/httpfromtcp/router"
	"github.com/rs/zerolog"
)

const (
	httpbinPrefix   = "/httpbin/"
	httpbinUpstream = "https://httpbin.org/"
	upstreamTimeout = 30 * time.Second
)

func page(code status.Code, title, heading, text string) router.Handler {
	body := fmt.Sprintf(
		"<html>\n  <head>\n    <title>%s</title>\n  </head>\n  <body>\n    <h1>%s</h1>\n    <p>%s</p>\n  </body>\n</html>\n",
		title, heading, text,
	)

	return func(_ *http.Request, response *http.Response) error {
		if err := response.SetCode(code); err != nil {
			return err
		}

		return response.HTML(body)
	}
}

// relay streams the upstream response body as it arrives.
func relay(client *stdhttp.Client, upstreamURL string) router.Handler {
	return func(request *http.Request, response *http.Response) error {
		target := upstreamURL + strings.TrimPrefix(request.Line.Target, httpbinPrefix)

		ctx, cancel := context.WithTimeout(context.Background(), upstreamTimeout)
		defer cancel()

		upstreamReq, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodGet, target, nil)
		if err != nil {
			return err
		}

		upstream, err := client.Do(upstreamReq)
		if err != nil {
			return err
		}
		defer upstream.Body.Close()

		contentType := upstream.Header.Get("Content-Type")
		if len(contentType) == 0 {
			contentType = mime.OctetStream
		}

		return response.Stream(contentType, upstream.Body)
	}
}

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	addr := flag.String("addr", "0.0.0.0:42069", "address to listen on")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	cfg := config.Default()
	if len(*configPath) > 0 {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Fatal().Err(err).Str("path", *configPath).Msg("cannot load config")
		}
	}

	yourProblem := page(
		status.BadRequest, "400 Bad Request", "Bad Request",
		"Your request honestly kinda sucked.",
	)
	myProblem := page(
		status.InternalServerError, "500 Internal Server Error", "Internal Server Error",
		"Okay, you know what? This one is on me.",
	)

	app := httpfromtcp.New(*addr).
		Tune(cfg).
		Logger(logger).
		Prefix(method.GET, httpbinPrefix, relay(new(stdhttp.Client), httpbinUpstream)).
		NotFound(page(
			status.OK, "200 OK", "Success!",
			"Your request was an absolute banger.",
		))

	for _, m := range method.List {
		app.Route(m, "/yourproblem", yourProblem).Route(m, "/myproblem", myProblem)
	}

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		<-signals
		if err := app.GracefulStop(); err != nil {
			logger.Error().Err(err).Msg("cannot stop")
		}
	}()

	if err := app.Serve(); err != nil && !errors.Is(err, httpfromtcp.ErrShutdown) {
		logger.Fatal().Err(err).Msg("serve")
	}
}
