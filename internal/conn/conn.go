package conn

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/veteranandreich/Async-web-server/config"
	"github.com/veteranandreich/Async-web-server/http"
	"github.com/veteranandreich/Async-web-server/http/method"
	"github.com/veteranandreich/Async-web-server/http/status"
	"github.com/veteranandreich/Async-web-server/internal/dispatch"
	"github.com/veteranandreich/Async-web-server/internal/parser"
	"github.com/veteranandreich/Async-web-server/internal/parser/http1"
	"github.com/veteranandreich/Async-web-server/internal/render"
)

// Conn is the lifecycle of a single connection: it owns the request and the parser,
// drives them with the data delivered by a transport and writes the response once
// the request is complete. It performs no reads by itself, so it fits both blocking
// and event-driven transports.
//
// Conn is not safe for concurrent use, it must be driven from a single goroutine.
type Conn struct {
	parser     parser.Parser
	request    *http.Request
	dispatcher *dispatch.Dispatcher
	logger     zerolog.Logger
	done       bool
}

func New(dispatcher *dispatch.Dispatcher, limits config.Limits, logger zerolog.Logger) *Conn {
	request := http.NewRequest()

	return &Conn{
		parser:     http1.NewParser(request, limits),
		request:    request,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Feed passes the chunk to the parser. As soon as a response is produced, it's written
// into w. The returned done signals the caller must close the connection. Returned
// errors are always write errors, the connection must be closed in that case, too.
func (c *Conn) Feed(data []byte, w io.Writer) (done bool, err error) {
	if c.done {
		return true, nil
	}

	c.logger.Trace().Int("bytes", len(data)).Msg("incoming data")

	state, err := c.parser.Parse(data)
	switch state {
	case parser.Pending:
		return false, nil
	case parser.Error:
		c.logger.Debug().Err(err).Msg("malformed request")
		return c.respond(w, render.ErrorResponse(status.CodeOf(err)))
	}

	c.logger.Debug().
		Stringer("method", c.request.Method).
		Str("path", c.request.Path).
		Msg("request parsed")

	response, err := c.dispatcher.Dispatch(c.request)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", c.request.Path).Msg("suppressed resolution failure")
	}

	return c.respond(w, response)
}

func (c *Conn) respond(w io.Writer, response *http.Response) (done bool, err error) {
	// HEAD responses are exactly as GET ones, except the body
	omitBody := c.request.Method == method.HEAD
	err = render.Write(w, response, omitBody)

	code := response.Reveal().Code
	c.logger.Info().
		Stringer("method", c.request.Method).
		Str("path", c.request.Path).
		Uint16("status", uint16(code)).
		Msg("response")

	return c.afterResponse(), err
}

// afterResponse is the connection reuse policy. Connections are never reused, every
// one of them is closed right after the response.
func (c *Conn) afterResponse() (done bool) {
	c.done = true
	return true
}
