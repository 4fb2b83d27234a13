package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Drivers which can serve connections.
const (
	// DriverGoroutine serves every connection in its own goroutine, blocking on reads.
	DriverGoroutine = "goroutine"
	// DriverEpoll multiplexes all the connections of a worker on a single epoll instance.
	// Available on Linux only.
	DriverEpoll = "epoll"
)

type (
	NET struct {
		// Host and Port are the address the listener is bound to.
		Host string `json:"host"`
		Port uint16 `json:"port"`
		// Network is either tcp4 or tcp6.
		Network string `json:"network"`
		// Backlog is the maximal number of pending connections queued by the kernel.
		Backlog int `json:"backlog"`
		// ReusePort enables SO_REUSEPORT on the listening socket.
		ReusePort bool `json:"reuse_port" test:"nullable"`
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int `json:"read_buffer_size"`
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout Duration `json:"read_timeout"`
		// WriteTimeout bounds writing a single response. A client that doesn't read the
		// response is disconnected once it expires.
		WriteTimeout Duration `json:"write_timeout"`
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod Duration `json:"accept_loop_interrupt_period"`
		// Driver is either DriverGoroutine or DriverEpoll.
		Driver string `json:"driver"`
	}

	Limits struct {
		// HeaderBlock limits the request line together with headers.
		HeaderBlock int `json:"header_block"`
		// Body limits the Content-Length value.
		Body int `json:"body"`
	}

	Log struct {
		// Level is one of trace, debug, info, warn, error.
		Level string `json:"level"`
		// File is a path to the log file. Logs go to stderr if empty.
		File string `json:"file" test:"nullable"`
	}
)

// Config holds everything the server needs to run.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	NET    NET    `json:"net"`
	Limits Limits `json:"limits"`
	Log    Log    `json:"log"`
	// Workers is the number of replicas serving the same listening socket.
	Workers int `json:"workers"`
	// DocumentRoot is the directory against which all the request paths are resolved.
	DocumentRoot string `json:"document_root"`
	// Server is the value of the Server response header.
	Server string `json:"server"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			Host:                      "127.0.0.1",
			Port:                      9000,
			Network:                   "tcp4",
			Backlog:                   5,
			ReadBufferSize:            4 * 1024,
			ReadTimeout:               Duration(90 * time.Second),
			WriteTimeout:              Duration(30 * time.Second),
			AcceptLoopInterruptPeriod: Duration(5 * time.Second),
			Driver:                    DriverGoroutine,
		},
		Limits: Limits{
			HeaderBlock: 64 * 1024,
			Body:        16 * 1024 * 1024,
		},
		Log: Log{
			Level: "info",
		},
		Workers:      1,
		DocumentRoot: ".",
		Server:       "127.0.0.1",
	}
}

// Addr returns the address to bind to.
func (n NET) Addr() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(int(n.Port)))
}

// Addr returns the address to bind to.
func (c *Config) Addr() string {
	return c.NET.Addr()
}

var (
	ErrNoWorkers      = errors.New("at least one worker is required")
	ErrUnknownDriver  = errors.New("unknown driver")
	ErrUnknownNetwork = errors.New("network must be either tcp4 or tcp6")
	ErrNoDocumentRoot = errors.New("document root must be set")
	ErrBadBufferSize  = errors.New("read buffer size must be positive")
	ErrBadLimits      = errors.New("limits must be positive")
	ErrBadTimeout     = errors.New("timeouts must be positive")
	ErrBadLogLevel    = errors.New("unknown log level")
)

// Validate checks the config for values that make no sense.
func (c *Config) Validate() error {
	switch {
	case c.Workers < 1:
		return ErrNoWorkers
	case c.NET.Driver != DriverGoroutine && c.NET.Driver != DriverEpoll:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.NET.Driver)
	case c.NET.Network != "tcp4" && c.NET.Network != "tcp6":
		return fmt.Errorf("%w: %q", ErrUnknownNetwork, c.NET.Network)
	case len(c.DocumentRoot) == 0:
		return ErrNoDocumentRoot
	case c.NET.ReadBufferSize <= 0:
		return ErrBadBufferSize
	case c.Limits.HeaderBlock <= 0 || c.Limits.Body <= 0:
		return ErrBadLimits
	case c.NET.ReadTimeout <= 0 || c.NET.WriteTimeout <= 0:
		return ErrBadTimeout
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrBadLogLevel, c.Log.Level)
	}

	return nil
}
