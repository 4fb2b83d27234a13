package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"
	"github.com/veteranandreich/Async-web-server/config"
)

// Session is the protocol side of a connection. It's fed with the data as it comes from
// the socket and writes responses by itself. Once done is returned, the connection is
// closed.
type Session interface {
	Feed(data []byte, w io.Writer) (done bool, err error)
}

// Spawner creates a new session for every accepted connection.
type Spawner func(conn net.Conn) Session

// Listener is the shared listening socket, accepted by every worker.
type Listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// Transport is a connection driver. Listen blocks, accepting connections from the
// listener and serving them until stopped. Wait blocks until every connection served by
// the transport is closed.
type Transport interface {
	Listen(l Listener, spawn Spawner) error
	Stop()
	Wait()
}

var ErrUnsupportedDriver = errors.New("driver isn't supported on this platform")

// New returns a transport, driving connections the way the config says.
func New(cfg config.NET, logger zerolog.Logger) (Transport, error) {
	switch cfg.Driver {
	case config.DriverGoroutine:
		return NewTCP(cfg, logger), nil
	case config.DriverEpoll:
		return NewEpoll(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}
}
