package asyncweb

import (
	"net"
	"sync"

	"github.com/dchest/uniuri"
	"github.com/rs/zerolog"
	"github.com/veteranandreich/Async-web-server/config"
	"github.com/veteranandreich/Async-web-server/internal/conn"
	"github.com/veteranandreich/Async-web-server/internal/dispatch"
	"github.com/veteranandreich/Async-web-server/transport"
)

// connIDLength is enough to tell connections apart in logs
const connIDLength = 8

// App is a static files server. It binds a single listening socket, shared by the
// configured number of workers.
type App struct {
	cfg      *config.Config
	logger   zerolog.Logger
	hooks    hooks
	addr     net.Addr
	stopch   chan struct{}
	stopOnce sync.Once
}

// New returns a new App instance. The config must not be modified afterward.
func New(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		stopch: make(chan struct{}),
	}
}

// NotifyOnStart calls the callback at the moment, when all the workers are started. However,
// it isn't strongly guaranteed that they'll be able to accept new connections immediately
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when all the workers are down. It's guaranteed,
// that at the moment as the callback is called, the server isn't able to accept any new connections
// and all the clients are already disconnected
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Addr returns the address the app is actually bound to, which differs from the configured
// one if the port was 0. It's set before the OnStart hook is called and is nil before.
func (a *App) Addr() net.Addr {
	return a.addr
}

// Serve starts the app and blocks until it's stopped or any of the workers fails.
func (a *App) Serve() error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	root, err := dispatch.Root(a.cfg.DocumentRoot)
	if err != nil {
		return err
	}

	l, err := transport.Listen(a.cfg.NET)
	if err != nil {
		return err
	}

	a.addr = l.Addr()
	spawn := a.spawner(dispatch.New(root, a.cfg.Server))
	sup := transport.NewSupervisor(l)

	for i := range a.cfg.Workers {
		worker, err := transport.New(a.cfg.NET, a.logger.With().Int("worker", i).Logger())
		if err != nil {
			_ = l.Close()
			return err
		}

		sup.Add(worker, spawn)
	}

	a.logger.Info().
		Stringer("addr", a.addr).
		Str("driver", a.cfg.NET.Driver).
		Int("workers", a.cfg.Workers).
		Str("root", a.cfg.DocumentRoot).
		Msg("listening")

	return a.run(&sup)
}

func (a *App) run(sup *transport.Supervisor) (err error) {
	errch := make(chan error, 1)
	go func() {
		errch <- sup.Run()
	}()

	callIfNotNil(a.hooks.OnStart)

	select {
	case err = <-errch:
		if err != nil {
			a.logger.Error().Err(err).Msg("worker failed")
		}
	case <-a.stopch:
		a.logger.Info().Msg("shutting down")
		sup.Stop()
		err = <-errch
	}

	callIfNotNil(a.hooks.OnStop)

	return err
}

// Stop gracefully stops the app: no new connections are accepted, whereas the
// accepted ones are served till the end.
//
// NOTE: the call isn't blocking. So by that, after the method returned, the server
// will still be working
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopch)
	})
}

func (a *App) spawner(dispatcher *dispatch.Dispatcher) transport.Spawner {
	return func(c net.Conn) transport.Session {
		logger := a.logger.With().
			Str("conn", uniuri.NewLen(connIDLength)).
			Stringer("remote", c.RemoteAddr()).
			Logger()
		logger.Debug().Msg("connection accepted")

		return conn.New(dispatcher, a.cfg.Limits, logger)
	}
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
