package transport

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/veteranandreich/Async-web-server/config"
	"github.com/veteranandreich/Async-web-server/internal/timer"
)

// TCP serves every connection in its own goroutine, blocking on reads.
type TCP struct {
	cfg    config.NET
	logger zerolog.Logger
	wg     *sync.WaitGroup
	stop   *atomic.Bool
}

func NewTCP(cfg config.NET, logger zerolog.Logger) *TCP {
	return &TCP{
		cfg:    cfg,
		logger: logger,
		wg:     new(sync.WaitGroup),
		stop:   new(atomic.Bool),
	}
}

func (t *TCP) Listen(l Listener, spawn Spawner) error {
	return acceptLoop(l, t.cfg.AcceptLoopInterruptPeriod.Std(), t.stop, func(conn net.Conn) {
		t.wg.Add(1)

		go func() {
			defer t.wg.Done()
			t.handle(conn, spawn)
		}()
	})
}

func (t *TCP) handle(conn net.Conn, spawn Spawner) {
	c := NewClient(conn, t.cfg.ReadTimeout.Std(), t.cfg.WriteTimeout.Std(), make([]byte, t.cfg.ReadBufferSize))
	if err := serve(c, spawn(conn)); err != nil {
		t.logger.Debug().Err(err).Stringer("remote", c.Remote()).Msg("connection dropped")
	}

	_ = c.Close()
}

func (t *TCP) Stop() {
	t.stop.Store(true)
}

func (t *TCP) Wait() {
	t.wg.Wait()
}

// serve feeds the session until it's done. Clean EOF isn't considered an error.
func serve(client Client, session Session) error {
	for {
		data, err := client.Read()
		if len(data) > 0 {
			done, werr := session.Feed(data, client)
			if werr != nil {
				return werr
			}

			if done {
				return nil
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}
	}
}

// acceptLoop accepts connections until stopped. The Accept() call is interrupted
// periodically in order to check whether it's time to stop.
func acceptLoop(l Listener, period time.Duration, stop *atomic.Bool, handle func(net.Conn)) error {
	for !stop.Load() {
		if err := l.SetDeadline(timer.Now().Add(period)); err != nil {
			if stop.Load() {
				return nil
			}

			return err
		}

		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			if stop.Load() && errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		handle(conn)
	}

	return nil
}
