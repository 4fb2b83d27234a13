package render

import (
	"strconv"

	"github.com/veteranandreich/Async-web-server/http"
	"github.com/veteranandreich/Async-web-server/http/headers"
	"github.com/veteranandreich/Async-web-server/http/mime"
	"github.com/veteranandreich/Async-web-server/http/status"
)

const (
	protocol = "HTTP/1.1 "
	crlf     = "\r\n"
	colonSP  = ": "
)

// Build serializes the response. Headers are rendered exactly in the given order and
// nothing is inferred: a caller adding Content-Length must make it match the body.
func Build(code status.Code, reason status.Status, hdrs []headers.Header, body []byte) []byte {
	return Append(nil, code, reason, hdrs, body)
}

// Append is Build, but renders into dst.
func Append(dst []byte, code status.Code, reason status.Status, hdrs []headers.Header, body []byte) []byte {
	dst = AppendHead(dst, code, reason, hdrs)
	return append(dst, body...)
}

// AppendHead renders the status line, headers and the blank line separating them from
// the body.
func AppendHead(dst []byte, code status.Code, reason status.Status, hdrs []headers.Header) []byte {
	dst = append(dst, protocol...)
	dst = strconv.AppendUint(dst, uint64(code), 10)
	dst = append(dst, ' ')
	dst = append(dst, reason...)
	dst = append(dst, crlf...)

	for _, header := range hdrs {
		if header.Key == headers.MethodKey {
			continue
		}

		dst = append(dst, header.Key...)
		dst = append(dst, colonSP...)
		dst = append(dst, header.Value...)
		dst = append(dst, crlf...)
	}

	return append(dst, crlf...)
}

// ErrorResponse returns a plain-text response with the long description of the code as
// a body. The connection is always closed after it.
func ErrorResponse(code status.Code) *http.Response {
	short, long := status.Describe(code)

	return http.NewResponse().
		Code(code).
		Status(short).
		Header("Content-Type", mime.Plain).
		Header("Content-Length", strconv.Itoa(len(long))).
		Header("Connection", "close").
		String(long)
}

// BuildError serializes ErrorResponse.
func BuildError(code status.Code) []byte {
	fields := ErrorResponse(code).Reveal()
	return Build(fields.Code, fields.Status, fields.Headers, fields.Body)
}
