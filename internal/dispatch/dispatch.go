package dispatch

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"syscall"

	"github.com/veteranandreich/Async-web-server/http"
	"github.com/veteranandreich/Async-web-server/http/method"
	"github.com/veteranandreich/Async-web-server/http/mime"
	"github.com/veteranandreich/Async-web-server/http/status"
	"github.com/veteranandreich/Async-web-server/internal/pathlib"
	"github.com/veteranandreich/Async-web-server/internal/render"
	"github.com/veteranandreich/Async-web-server/internal/timer"
)

type handler func(d *Dispatcher, request *http.Request) (*http.Response, error)

// handlers is the closed set of supported methods. Everything else falls through to
// unsupported.
var handlers = map[method.Method]handler{
	method.GET:  (*Dispatcher).file,
	method.HEAD: (*Dispatcher).file,
	method.POST: (*Dispatcher).echo,
}

// Dispatcher maps a complete request onto a response. It's stateless aside from the
// read-only configuration, so a single instance is shared between all the connections.
type Dispatcher struct {
	root   fs.FS
	server string
	date   func() string
}

func New(root fs.FS, server string) *Dispatcher {
	return &Dispatcher{
		root:   root,
		server: server,
		date:   timer.Date,
	}
}

// Dispatch always returns a response to be sent, even if it's an error response. The
// error is returned only if something unexpected happened, so an internal server error
// response was made up. The error is meant to be logged and not propagated any further.
//
// Responses to HEAD requests carry the body as GET would, it must be omitted on writing.
func (d *Dispatcher) Dispatch(request *http.Request) (*http.Response, error) {
	handle, found := handlers[request.Method]
	if !found {
		return unsupported(request)
	}

	return handle(d, request)
}

func unsupported(*http.Request) (*http.Response, error) {
	return render.ErrorResponse(status.MethodNotAllowed), nil
}

func (d *Dispatcher) file(request *http.Request) (*http.Response, error) {
	name, err := d.resolve(fsName(pathlib.Normalize(request.Path)))
	if err != nil {
		return failure(err)
	}

	content, err := fs.ReadFile(d.root, name)
	if err != nil {
		return failure(fmt.Errorf("%w: read %s: %w", status.ErrInternalServerError, name, err))
	}

	response := http.NewResponse().
		Header("Content-Type", mime.Guess(name)).
		Header("Date", d.date()).
		Header("Server", d.server).
		ContentLength(len(content)).
		Header("Connection", "close").
		Bytes(content)

	return response, nil
}

// resolve finds the regular file to be served by the name. Clean outcomes are reported
// via status.ErrNotFound and status.ErrForbidden, everything else is unexpected.
func (d *Dispatcher) resolve(name string) (string, error) {
	stat, err := fs.Stat(d.root, name)
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrInvalid), errors.Is(err, syscall.ENOTDIR):
		return "", status.ErrNotFound
	case err != nil:
		return "", fmt.Errorf("%w: stat %s: %w", status.ErrInternalServerError, name, err)
	case stat.IsDir():
		name = path.Join(name, indexFile)
		stat, err = fs.Stat(d.root, name)
		if err != nil || !stat.Mode().IsRegular() {
			// directory listing is never produced
			return "", status.ErrForbidden
		}
	case !stat.Mode().IsRegular():
		return "", status.ErrNotFound
	}

	return name, nil
}

// failure turns the resolution error into the error response. Only internal errors are
// returned back, as they must be logged.
func failure(err error) (*http.Response, error) {
	code := status.CodeOf(err)
	if code != status.InternalServerError {
		err = nil
	}

	return render.ErrorResponse(code), err
}

// echo responds with the request body, which is either the whole entity or the payload
// of the single multipart part.
func (d *Dispatcher) echo(request *http.Request) (*http.Response, error) {
	response := http.NewResponse().
		Header("Date", d.date()).
		Header("Server", d.server).
		Header("Content-Type", request.Headers.Value("content-type")).
		Header("Connection", "close").
		ContentLength(len(request.Body)).
		Bytes(request.Body)

	return response, nil
}
