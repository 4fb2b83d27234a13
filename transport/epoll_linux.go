//go:build linux

package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/veteranandreich/Async-web-server/config"
	"github.com/veteranandreich/Async-web-server/internal/timer"
	"golang.org/x/sys/unix"
)

const (
	maxEvents = 256
	// pollTimeout bounds a single EpollWait call, so idle connections are swept and
	// stopping is noticed even if no events come
	pollTimeout = 100 * time.Millisecond
)

// Epoll multiplexes all the connections of a worker on a single epoll instance, so they
// are served by a single goroutine. Accepting is still done by a separate goroutine via
// the listener, registering the descriptors of accepted connections.
//
// Reads are done directly from descriptors, whereas writes go through net.Conn, so the
// runtime deals with partial writes.
type Epoll struct {
	cfg        config.NET
	logger     zerolog.Logger
	epfd       int
	mu         sync.Mutex
	conns      map[int]*epollConn
	stop       *atomic.Bool
	acceptDone *atomic.Bool
	loopDone   chan struct{}
}

type epollConn struct {
	conn     net.Conn
	session  Session
	deadline time.Time
}

func NewEpoll(cfg config.NET, logger zerolog.Logger) (Transport, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	return &Epoll{
		cfg:        cfg,
		logger:     logger,
		epfd:       epfd,
		conns:      make(map[int]*epollConn),
		stop:       new(atomic.Bool),
		acceptDone: new(atomic.Bool),
		loopDone:   make(chan struct{}),
	}, nil
}

func (e *Epoll) Listen(l Listener, spawn Spawner) error {
	go e.loop()
	defer e.acceptDone.Store(true)

	return acceptLoop(l, e.cfg.AcceptLoopInterruptPeriod.Std(), e.stop, func(conn net.Conn) {
		if err := e.register(conn, spawn(conn)); err != nil {
			e.logger.Debug().Err(err).Stringer("remote", conn.RemoteAddr()).Msg("cannot register connection")
			_ = conn.Close()
		}
	})
}

func (e *Epoll) Stop() {
	e.stop.Store(true)
}

// Wait blocks until the event loop is over. The loop is over when both the transport is
// stopped and the last connection is closed.
func (e *Epoll) Wait() {
	<-e.loopDone
}

func (e *Epoll) register(conn net.Conn, session Session) error {
	fd, err := fdOf(conn)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.conns[fd] = &epollConn{
		conn:     conn,
		session:  session,
		deadline: timer.Now().Add(e.cfg.ReadTimeout.Std()),
	}
	e.mu.Unlock()

	event := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	}

	if err = unix.EpollCtl(e.epfd, unix.EPOLL_CTL_ADD, fd, &event); err != nil {
		e.mu.Lock()
		delete(e.conns, fd)
		e.mu.Unlock()

		return fmt.Errorf("epoll_ctl: %w", err)
	}

	return nil
}

func (e *Epoll) loop() {
	defer close(e.loopDone)
	defer unix.Close(e.epfd)

	events := make([]unix.EpollEvent, maxEvents)
	buff := make([]byte, e.cfg.ReadBufferSize)

	for {
		n, err := unix.EpollWait(e.epfd, events, int(pollTimeout/time.Millisecond))
		if err != nil && !errors.Is(err, unix.EINTR) {
			e.logger.Error().Err(err).Msg("epoll_wait failed, dropping all the connections")
			e.releaseAll()
			return
		}

		for i := 0; i < n; i++ {
			e.serve(int(events[i].Fd), buff)
		}

		e.sweep()

		if e.stop.Load() && e.acceptDone.Load() && e.idle() {
			return
		}
	}
}

func (e *Epoll) serve(fd int, buff []byte) {
	e.mu.Lock()
	c, found := e.conns[fd]
	e.mu.Unlock()

	if !found {
		return
	}

	n, err := unix.Read(fd, buff)
	switch {
	case errors.Is(err, unix.EAGAIN):
		return
	case err != nil:
		e.logger.Debug().Err(err).Stringer("remote", c.conn.RemoteAddr()).Msg("connection dropped")
		e.release(fd, c)
		return
	case n == 0:
		e.release(fd, c)
		return
	}

	now := timer.Now()
	c.deadline = now.Add(e.cfg.ReadTimeout.Std())

	// the write blocks the whole loop, so a client that doesn't read must not hold it
	// for longer than the write timeout
	if err = c.conn.SetWriteDeadline(now.Add(e.cfg.WriteTimeout.Std())); err != nil {
		e.release(fd, c)
		return
	}

	done, err := c.session.Feed(buff[:n], c.conn)
	if err != nil {
		e.logger.Debug().Err(err).Stringer("remote", c.conn.RemoteAddr()).Msg("connection dropped")
	}

	if done || err != nil {
		e.release(fd, c)
	}
}

// sweep closes connections that were idle for longer than the read timeout.
func (e *Epoll) sweep() {
	now := timer.Now()
	var expired []int

	e.mu.Lock()
	for fd, c := range e.conns {
		if now.After(c.deadline) {
			expired = append(expired, fd)
		}
	}
	e.mu.Unlock()

	for _, fd := range expired {
		e.mu.Lock()
		c := e.conns[fd]
		e.mu.Unlock()

		e.logger.Debug().Stringer("remote", c.conn.RemoteAddr()).Msg("read timeout")
		e.release(fd, c)
	}
}

// release removes the descriptor from the epoll instance before closing, as otherwise
// the number might be reused by a newly accepted connection in the meantime.
func (e *Epoll) release(fd int, c *epollConn) {
	_ = unix.EpollCtl(e.epfd, unix.EPOLL_CTL_DEL, fd, nil)

	e.mu.Lock()
	delete(e.conns, fd)
	e.mu.Unlock()

	_ = c.conn.Close()
}

func (e *Epoll) releaseAll() {
	e.mu.Lock()
	conns := e.conns
	e.conns = make(map[int]*epollConn)
	e.mu.Unlock()

	for fd, c := range conns {
		_ = unix.EpollCtl(e.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		_ = c.conn.Close()
	}
}

func (e *Epoll) idle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.conns) == 0
}

// fdOf extracts the descriptor of the connection. It stays valid as long as the
// connection isn't closed.
func fdOf(conn net.Conn) (fd int, err error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return 0, fmt.Errorf("%T doesn't expose a descriptor", conn)
	}

	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, err
	}

	err = raw.Control(func(descriptor uintptr) {
		fd = int(descriptor)
	})

	return fd, err
}
