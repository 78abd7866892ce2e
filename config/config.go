package config

import (
	"os"
	"time"

	json "github.com/json-iterator/go"
)

type (
	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int `json:"read_buffer_size"`
		// ReadTimeout limits how long a connection may stay silent. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout Duration `json:"read_timeout"`
		// StreamBufferSize is the buffer used to relay unsized streams as chunked bodies. It
		// bounds how much of the upstream data is read ahead of the client.
		StreamBufferSize int `json:"stream_buffer_size"`
	}

	Headers struct {
		// MaxSize limits the request line and the header block together. Exceeding it
		// results in status.ErrHeaderFieldsTooLarge.
		MaxSize int `json:"max_size"`
	}

	Body struct {
		// MaxSize describes the maximal declared Content-Length, that can be processed.
		MaxSize int `json:"max_size"`
	}
)

// Config holds settings used across various parts of the server, mainly restrictions,
// limitations and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	NET     NET     `json:"net"`
	Headers Headers `json:"headers"`
	Body    Body    `json:"body"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			ReadBufferSize:   4 * 1024,
			ReadTimeout:      Duration(90 * time.Second),
			StreamBufferSize: 4 * 1024,
		},
		Headers: Headers{
			// the request line included. Long cookies may need more.
			MaxSize: 16 * 1024,
		},
		Body: Body{
			MaxSize: 16 * 1024 * 1024,
		},
	}
}

// Parse overlays the JSON document on top of the defaults. Missing fields keep their
// default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := json.ConfigCompatibleWithStandardLibrary.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads and parses the JSON config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}
