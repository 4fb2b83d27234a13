package transport

import (
	"fmt"
	"net"

	"github.com/valyala/tcplisten"
	"github.com/veteranandreich/Async-web-server/config"
)

// Listen binds the listening socket shared by all the workers. SO_REUSEADDR is always
// set, SO_REUSEPORT only if enabled in the config.
func Listen(cfg config.NET) (*net.TCPListener, error) {
	lcfg := tcplisten.Config{
		ReusePort: cfg.ReusePort,
		Backlog:   cfg.Backlog,
	}

	l, err := lcfg.NewListener(cfg.Network, cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Addr(), err)
	}

	tcp, ok := l.(*net.TCPListener)
	if !ok {
		_ = l.Close()
		return nil, fmt.Errorf("listen %s: unexpected listener %T", cfg.Addr(), l)
	}

	return tcp, nil
}
