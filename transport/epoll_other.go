//go:build !linux

package transport

import (
	"github.com/rs/zerolog"
	"github.com/veteranandreich/Async-web-server/config"
)

// NewEpoll always fails, as epoll is available on Linux only.
func NewEpoll(config.NET, zerolog.Logger) (Transport, error) {
	return nil, ErrUnsupportedDriver
}
