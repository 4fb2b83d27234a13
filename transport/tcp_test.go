package transport

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/veteranandreich/Async-web-server/config"
	"github.com/veteranandreich/Async-web-server/transport/dummy"
)

var _ Client = new(dummy.Client)

// floodSize is far beyond what socket buffers of both sides can hold together.
const floodSize = 64 << 20

// lineSession answers the first line it gets with the same line prefixed. The "flood"
// line is answered with floodSize bytes instead.
type lineSession struct {
	buff []byte
}

func (l *lineSession) Feed(data []byte, w io.Writer) (done bool, err error) {
	l.buff = append(l.buff, data...)
	lf := bytes.IndexByte(l.buff, '\n')
	if lf == -1 {
		return false, nil
	}

	if string(l.buff[:lf]) == "flood" {
		_, err = w.Write(make([]byte, floodSize))
		return true, err
	}

	_, err = w.Write(append([]byte("echo: "), l.buff[:lf+1]...))
	return true, err
}

func spawnLines(net.Conn) Session {
	return new(lineSession)
}

func TestServe(t *testing.T) {
	t.Run("done", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("hel"), []byte("lo\nignored"), []byte("never read\n"))
		require.NoError(t, serve(client, new(lineSession)))
		require.Equal(t, "echo: hello\n", client.Written())
	})

	t.Run("eof before done", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("incomplete"))
		require.NoError(t, serve(client, new(lineSession)))
		require.Empty(t, client.Written())
	})

	t.Run("read error", func(t *testing.T) {
		errReset := errors.New("connection reset by peer")
		client := dummy.NewMockClient([]byte("incomplete")).Err(errReset)
		require.ErrorIs(t, serve(client, new(lineSession)), errReset)
	})
}

func TestClientWriteTimeout(t *testing.T) {
	server, peer := net.Pipe()
	defer peer.Close()

	c := NewClient(server, time.Second, 50*time.Millisecond, make([]byte, 16))
	defer c.Close()

	// nobody reads from the peer, so the write can't complete
	_, err := c.Write([]byte("response"))
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func testNET(driver string) config.NET {
	cfg := config.Default().NET
	cfg.Port = 0
	cfg.Driver = driver
	cfg.AcceptLoopInterruptPeriod = config.Duration(50 * time.Millisecond)
	cfg.ReadTimeout = config.Duration(300 * time.Millisecond)
	cfg.WriteTimeout = config.Duration(300 * time.Millisecond)

	return cfg
}

func drivers(t *testing.T) []string {
	if runtime.GOOS != "linux" {
		t.Log("epoll driver is skipped: not supported on", runtime.GOOS)
		return []string{config.DriverGoroutine}
	}

	return []string{config.DriverGoroutine, config.DriverEpoll}
}

func startWorkers(t *testing.T, cfg config.NET, workers int) (addr string, stop func()) {
	l, err := Listen(cfg)
	require.NoError(t, err)

	sup := NewSupervisor(l)
	for range workers {
		worker, err := New(cfg, zerolog.Nop())
		require.NoError(t, err)
		sup.Add(worker, spawnLines)
	}

	errch := runParallel(sup.Run)

	return l.Addr().String(), func() {
		sup.Stop()
		require.NoError(t, <-errch)
	}
}

func exchange(addr string, parts ...string) (string, error) {
	conn, err := net.Dial("tcp4", addr)
	if err != nil {
		return "", err
	}

	defer conn.Close()

	for _, part := range parts {
		if _, err = conn.Write([]byte(part)); err != nil {
			return "", err
		}

		time.Sleep(5 * time.Millisecond)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	response, err := io.ReadAll(conn)

	return string(response), err
}

func TestDrivers(t *testing.T) {
	for _, driver := range drivers(t) {
		t.Run(driver, func(t *testing.T) {
			addr, stop := startWorkers(t, testNET(driver), 2)

			t.Run("exchange", func(t *testing.T) {
				response, err := exchange(addr, "hel", "lo\n")
				require.NoError(t, err)
				require.Equal(t, "echo: hello\n", response)
			})

			t.Run("concurrent", func(t *testing.T) {
				var wg sync.WaitGroup
				errs := make(chan error, 32)

				for i := range 32 {
					wg.Add(1)

					go func(i int) {
						defer wg.Done()

						line := "client " + strconv.Itoa(i)
						response, err := exchange(addr, line[:3], line[3:]+"\n")
						if err == nil && response != "echo: "+line+"\n" {
							err = errors.New("unexpected response: " + response)
						}

						errs <- err
					}(i)
				}

				wg.Wait()
				close(errs)

				for err := range errs {
					require.NoError(t, err)
				}
			})

			t.Run("idle connection is closed", func(t *testing.T) {
				conn, err := net.Dial("tcp4", addr)
				require.NoError(t, err)
				defer conn.Close()

				_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
				n, err := conn.Read(make([]byte, 16))
				require.Zero(t, n)
				require.ErrorIs(t, err, io.EOF)
			})

			stop()

			_, err := net.Dial("tcp4", addr)
			require.Error(t, err, "listener must be closed")
		})
	}
}

func TestStalledReader(t *testing.T) {
	for _, driver := range drivers(t) {
		t.Run(driver, func(t *testing.T) {
			// a single worker, so both connections are served by it
			addr, stop := startWorkers(t, testNET(driver), 1)
			defer stop()

			stalled, err := net.Dial("tcp4", addr)
			require.NoError(t, err)
			defer stalled.Close()

			_, err = stalled.Write([]byte("flood\n"))
			require.NoError(t, err)
			time.Sleep(50 * time.Millisecond)

			response, err := exchange(addr, "hello\n")
			require.NoError(t, err)
			require.Equal(t, "echo: hello\n", response)

			// the flood was cut off by the write timeout, and the connection closed
			_ = stalled.SetReadDeadline(time.Now().Add(5 * time.Second))
			n, err := io.Copy(io.Discard, stalled)
			require.NoError(t, err)
			require.Less(t, n, int64(floodSize))
		})
	}
}

func TestNew(t *testing.T) {
	cfg := config.Default().NET
	cfg.Driver = "select"
	_, err := New(cfg, zerolog.Nop())
	require.ErrorIs(t, err, config.ErrUnknownDriver)

	cfg.Driver = config.DriverGoroutine
	tr, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, new(TCP), tr)
}
