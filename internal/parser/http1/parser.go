package http1

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/indigo-web/utils/uf"
	"github.com/veteranandreich/Async-web-server/config"
	"github.com/veteranandreich/Async-web-server/http"
	"github.com/veteranandreich/Async-web-server/http/headers"
	"github.com/veteranandreich/Async-web-server/http/method"
	"github.com/veteranandreich/Async-web-server/http/status"
	"github.com/veteranandreich/Async-web-server/internal/parser"
	"github.com/veteranandreich/Async-web-server/internal/terminator"
)

// blankLine separates the header block from the body.
const blankLine = "\r\n\r\n"

var _ parser.Parser = new(Parser)

// Parser is a stream-based http requests parser. Instead of walking the stream
// byte-by-byte, it lets the terminator.Reader collect a whole unit first: the request
// line together with headers is delimited by the blank line, and the body is then
// collected by its Content-Length. The request is modified by pointer, field-by-field,
// as the phases complete.
//
// Parser serves exactly one request and is not reusable.
type Parser struct {
	reader  *terminator.Reader
	request *http.Request
	limits  config.Limits
	err     error
	state   parserState
}

func NewParser(request *http.Request, limits config.Limits) *Parser {
	return &Parser{
		reader:  terminator.New(terminator.Delim(blankLine)),
		request: request,
		limits:  limits,
		state:   eLineAndHeaders,
	}
}

// Parse feeds the data into the parser. The data is copied, so the caller is free to
// reuse the buffer. After Completed is returned, the request is fully filled; all
// the following bytes are ignored, as pipelining isn't supported. Error is absorbing:
// once returned, it'll be returned for every consequent call with the same error.
func (p *Parser) Parse(data []byte) (state parser.RequestState, err error) {
	switch p.state {
	case eDone:
		return parser.Completed, nil
	case eError:
		return parser.Error, p.err
	}

	p.reader.Feed(data)

	for {
		switch p.state {
		case eLineAndHeaders:
			head, ok := p.reader.Poll()
			if !ok {
				if p.reader.Buffered() > p.limits.HeaderBlock {
					return p.fail(status.ErrHeadersTooLarge)
				}

				return parser.Pending, nil
			}

			if len(head) > p.limits.HeaderBlock {
				return p.fail(status.ErrHeadersTooLarge)
			}

			if err = p.head(head); err != nil {
				return p.fail(err)
			}
		case eBodyFixed:
			body, ok := p.reader.Poll()
			if !ok {
				return parser.Pending, nil
			}

			if err = p.body(body); err != nil {
				return p.fail(err)
			}
		case eDone:
			return parser.Completed, nil
		default:
			panic(fmt.Sprintf("BUG: unexpected state: %s", p.state))
		}
	}
}

// head parses the request line and headers. The block is never overridden by the
// reader, so strings can safely point into it.
func (p *Parser) head(block []byte) error {
	// RFC 9112, 2.2: empty lines preceding the request line should be ignored
	text := strings.TrimLeft(uf.B2S(block), "\r\n")

	token, rest, _ := strings.Cut(text, " ")
	path, rest, _ := strings.Cut(rest, " ")
	if len(token) == 0 || len(path) == 0 || strings.ContainsAny(token, "\r\n") ||
		strings.ContainsAny(path, "\r\n") {
		return status.ErrBadRequestLine
	}

	for len(rest) > 0 {
		var line string
		line, rest, _ = strings.Cut(rest, "\n")
		// the first line is the protocol. It has no colon, so it's skipped as any other
		// line without it
		key, value, found := strings.Cut(strings.TrimSuffix(line, "\r"), ":")
		if !found {
			continue
		}

		p.request.Headers.Add(key, value)
	}

	p.request.Headers.SetMethod(token)
	p.request.Method = method.Parse(token)
	p.request.Path = path

	switch p.request.Method {
	case method.GET, method.HEAD:
		p.state = eDone
		return nil
	case method.POST:
		return p.expectBody()
	default:
		return status.ErrMethodNotAllowed
	}
}

func (p *Parser) expectBody() error {
	raw, found := p.request.Headers.Get("content-length")
	if !found {
		return status.ErrNoContentLength
	}

	length, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || length <= 0 {
		return status.ErrBadContentLength
	}

	if length > p.limits.Body {
		return status.ErrBodyTooLarge
	}

	contentType, found := p.request.Headers.Get("content-type")
	if !found {
		return status.ErrNoContentType
	}

	if boundary, ok := headers.Param(contentType, "boundary"); ok && len(boundary) > 0 {
		p.request.Boundary = boundary
	}

	p.reader.SetTerminator(terminator.Count(length))
	p.state = eBodyFixed

	return nil
}

func (p *Parser) body(body []byte) error {
	if len(p.request.Boundary) == 0 {
		p.request.Body = body
		p.state = eDone
		return nil
	}

	part, err := extractPart(body, p.request.Boundary)
	if err != nil {
		return err
	}

	p.request.Body = part
	p.state = eDone

	return nil
}

func (p *Parser) fail(err error) (parser.RequestState, error) {
	p.err = err
	p.state = eError
	// nothing is going to be parsed anymore, so there's no reason to hold the memory
	p.reader.Reset(terminator.Delim(blankLine))

	return parser.Error, err
}
