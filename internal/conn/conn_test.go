package conn

import (
	"bytes"
	"io/fs"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/veteranandreich/Async-web-server/config"
	"github.com/veteranandreich/Async-web-server/internal/dispatch"
)

type unreadableFS struct {
	fstest.MapFS
}

func (unreadableFS) ReadFile(name string) ([]byte, error) {
	return nil, &fsError{name}
}

type fsError struct {
	name string
}

func (f *fsError) Error() string {
	return "cannot read " + f.name
}

type deniedFS struct {
	fstest.MapFS
}

func (deniedFS) Stat(name string) (fs.FileInfo, error) {
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrPermission}
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":   {Data: []byte("<h1>hello</h1>")},
		"empty/.keep":  {Data: []byte{}},
		"file.unknown": {Data: []byte("data")},
	}
}

func newConn(logs *bytes.Buffer) *Conn {
	return newConnFS(testFS(), logs)
}

func newConnFS(root fstest.MapFS, logs *bytes.Buffer) *Conn {
	logger := zerolog.Nop()
	if logs != nil {
		logger = zerolog.New(logs).Level(zerolog.TraceLevel)
	}

	return New(dispatch.New(root, "127.0.0.1"), config.Default().Limits, logger)
}

func disperse(data string, n int) (parts []string) {
	for len(data) > n {
		parts = append(parts, data[:n])
		data = data[n:]
	}

	if len(data) > 0 {
		parts = append(parts, data)
	}

	return parts
}

// drive feeds the parts one by one, requiring the connection to be done exactly on the
// last one.
func drive(t *testing.T, c *Conn, parts []string) string {
	var out bytes.Buffer

	for i, part := range parts {
		done, err := c.Feed([]byte(part), &out)
		require.NoError(t, err)
		require.Equal(t, i == len(parts)-1, done, "part %d of %d", i+1, len(parts))

		if !done {
			require.Zero(t, out.Len(), "nothing must be written before the request is complete")
		}
	}

	return out.String()
}

func TestConn(t *testing.T) {
	t.Run("GET", func(t *testing.T) {
		out := drive(t, newConn(nil), []string{"GET / HTTP/1.1\r\nHost: localhost\r\n\r\n"})
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nDate: "))
		require.Contains(t, out, "\r\nServer: 127.0.0.1\r\nContent-Length: 14\r\nConnection: close\r\n\r\n")
		require.True(t, strings.HasSuffix(out, "\r\n\r\n<h1>hello</h1>"))
	})

	t.Run("HEAD", func(t *testing.T) {
		get := drive(t, newConn(nil), []string{"GET / HTTP/1.1\r\n\r\n"})
		head := drive(t, newConn(nil), []string{"HEAD / HTTP/1.1\r\n\r\n"})
		require.Contains(t, head, "Content-Length: 14\r\n")
		require.True(t, strings.HasSuffix(head, "\r\n\r\n"))
		// dates might differ if the clock ticked in between
		require.Equal(t, withoutDate(get), withoutDate(head)+"<h1>hello</h1>")
	})

	t.Run("POST", func(t *testing.T) {
		out := drive(t, newConn(nil), disperse(
			"POST / HTTP/1.1\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhello", 3,
		))
		require.Contains(t, out, "\r\nDate: ")
		require.Equal(t, "HTTP/1.1 200 OK\r\n"+
			"Server: 127.0.0.1\r\n"+
			"Content-Type: text/plain\r\n"+
			"Connection: close\r\n"+
			"Content-Length: 5\r\n"+
			"\r\n"+
			"hello", withoutDate(out))
	})

	t.Run("multipart POST", func(t *testing.T) {
		body := "--X\r\nContent-Disposition: form-data; name=\"f\"\r\n\r\nPAYLOAD\r\n--X--\r\n"
		request := "POST /upload HTTP/1.1\r\nContent-Type: multipart/form-data; boundary=X\r\n" +
			"Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body

		out := drive(t, newConn(nil), disperse(request, 1))
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"))
		require.Contains(t, out, "Content-Length: 7\r\n")
		require.True(t, strings.HasSuffix(out, "\r\n\r\nPAYLOAD"))
	})

	t.Run("PUT without reading body", func(t *testing.T) {
		out := drive(t, newConn(nil), []string{"PUT /file HTTP/1.1\r\nContent-Length: 100\r\n\r\n"})
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 405 Method Not Allowed\r\n"))
		require.Contains(t, out, "Content-Type: text/plain\r\n")
		require.Contains(t, out, "Connection: close\r\n")
	})

	t.Run("zero content-length", func(t *testing.T) {
		out := drive(t, newConn(nil), []string{"POST / HTTP/1.1\r\nContent-Type: text/plain\r\nContent-Length: 0\r\n\r\n"})
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 400 Bad Request\r\n"))
		require.True(t, strings.HasSuffix(out, "Bad request syntax or unsupported method"))
	})

	t.Run("forbidden", func(t *testing.T) {
		out := drive(t, newConn(nil), []string{"GET /empty/ HTTP/1.1\r\n\r\n"})
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 403 Forbidden\r\n"))
	})

	t.Run("not found", func(t *testing.T) {
		out := drive(t, newConn(nil), []string{"GET /missing HTTP/1.1\r\n\r\n"})
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 404 Not Found\r\n"))
	})

	t.Run("HEAD of error omits body", func(t *testing.T) {
		out := drive(t, newConn(nil), []string{"HEAD /missing HTTP/1.1\r\n\r\n"})
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 404 Not Found\r\n"))
		require.True(t, strings.HasSuffix(out, "\r\n\r\n"))
	})
}

func TestConnNeverReused(t *testing.T) {
	c := newConn(nil)
	var out bytes.Buffer

	done, err := c.Feed([]byte("GET / HTTP/1.1\r\n\r\nGET / HTTP/1.1\r\n\r\n"), &out)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, 1, strings.Count(out.String(), "HTTP/1.1 200 OK"))

	written := out.Len()
	done, err = c.Feed([]byte("GET / HTTP/1.1\r\n\r\n"), &out)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, written, out.Len())
}

func TestConnLogging(t *testing.T) {
	t.Run("suppressed failure is logged", func(t *testing.T) {
		var logs bytes.Buffer
		c := newConnFS(nil, &logs)
		c.dispatcher = dispatch.New(unreadableFS{testFS()}, "127.0.0.1")

		out := drive(t, c, []string{"GET /index.html HTTP/1.1\r\n\r\n"})
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 500 Internal Server Error\r\n"))
		require.Contains(t, logs.String(), `"level":"warn"`)
		require.Contains(t, logs.String(), "cannot read index.html")
	})

	t.Run("denied stat is logged", func(t *testing.T) {
		var logs bytes.Buffer
		c := newConnFS(nil, &logs)
		c.dispatcher = dispatch.New(deniedFS{testFS()}, "127.0.0.1")

		out := drive(t, c, []string{"HEAD /index.html HTTP/1.1\r\n\r\n"})
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 500 Internal Server Error\r\n"))
		require.Contains(t, logs.String(), `"level":"warn"`)
		require.Contains(t, logs.String(), "permission denied")
	})

	t.Run("malformed request", func(t *testing.T) {
		var logs bytes.Buffer
		drive(t, newConn(&logs), []string{"\r\n\r\n"})
		require.Contains(t, logs.String(), `"level":"debug"`)
		require.Contains(t, logs.String(), `"status":400`)
	})
}

func withoutDate(response string) string {
	start := strings.Index(response, "Date: ")
	end := start + strings.Index(response[start:], "\r\n") + 2

	return response[:start] + response[end:]
}
