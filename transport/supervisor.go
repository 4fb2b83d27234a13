package transport

import (
	"sync/atomic"
)

// Supervisor runs multiple transports over a single shared listener. These are workers:
// they compete for accepted connections, each one serving its own disjoint set of them.
// As soon as any of the workers dies, all the others are stopped, too.
type Supervisor struct {
	stopped *atomic.Bool
	ts      []boundTransport
	stopch  chan struct{}
	done    chan struct{}
	l       Listener
}

func NewSupervisor(l Listener) Supervisor {
	return Supervisor{
		stopped: new(atomic.Bool),
		stopch:  make(chan struct{}),
		done:    make(chan struct{}),
		l:       l,
	}
}

// Add registers a new worker. Must not be called after Run.
func (s *Supervisor) Add(transport Transport, spawn Spawner) {
	s.ts = append(s.ts, boundTransport{
		spawn: spawn,
		t:     transport,
	})
}

// Run blocks until either Stop is called or any of the workers fails. In the latter case,
// the error is returned. The listener is closed in both cases.
func (s *Supervisor) Run() error {
	defer close(s.done)

	if len(s.ts) == 0 {
		return s.l.Close()
	}

	errch := make(chan error)

	for _, t := range s.ts {
		go func(t boundTransport, ch chan<- error) {
			ch <- t.t.Listen(s.l, t.spawn)
		}(t, errch)
	}

	select {
	case err := <-errch:
		s.stop()
		drain(errch, len(s.ts)-1)

		return err
	case <-s.stopch:
		s.stop()
		drain(errch, len(s.ts))
		s.stopch <- struct{}{}

		return nil
	}
}

// Stop gracefully stops all the workers and blocks until the last connection is closed.
// Must be called after Run.
func (s *Supervisor) Stop() {
	if s.stopped.Load() {
		<-s.done
		return
	}

	select {
	case s.stopch <- struct{}{}:
		<-s.stopch
	case <-s.done:
	}
}

func (s *Supervisor) stop() {
	if s.stopped.Load() {
		return
	}

	s.stopped.Store(true)

	for _, t := range s.ts {
		t.t.Stop()
	}

	// closing the listener interrupts pending Accept() calls, so workers notice they're
	// stopped right away
	_ = s.l.Close()

	for _, t := range s.ts {
		t.t.Wait()
	}
}

type boundTransport struct {
	spawn Spawner
	t     Transport
}

func drain(ch <-chan error, n int) {
	for range n {
		<-ch
	}
}
