package http

import (
	"strconv"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	"github.com/veteranandreich/Async-web-server/http/headers"
	"github.com/veteranandreich/Async-web-server/http/status"
)

// why 5? Because it's exactly how many headers a file response has.
const preallocRespHeaders = 5

// Fields are the response's contents, exposed for the serializer.
type Fields struct {
	Code    status.Code
	Status  status.Status
	Headers []headers.Header
	Body    []byte
}

type Response struct {
	fields Fields
}

// NewResponse returns a new instance of the Response object with status code set to 200 OK
// and no headers at all. Nothing is implied, so Content-Length must be set explicitly.
func NewResponse() *Response {
	return &Response{
		fields: Fields{
			Code:    status.OK,
			Headers: make([]headers.Header, 0, preallocRespHeaders),
		},
	}
}

// Code sets a Response code. The reason phrase is derived from it, unless set explicitly
// via Status.
func (r *Response) Code(code status.Code) *Response {
	r.fields.Code = code
	return r
}

// Status sets a custom reason phrase.
func (r *Response) Status(status status.Status) *Response {
	r.fields.Status = status
	return r
}

// Header appends the values under the key. Headers are rendered in the same order as
// they were added.
func (r *Response) Header(key string, values ...string) *Response {
	for _, value := range values {
		r.fields.Headers = append(r.fields.Headers, headers.Header{
			Key:   key,
			Value: value,
		})
	}

	return r
}

// ContentLength sets the Content-Length header to the given length.
func (r *Response) ContentLength(length int) *Response {
	return r.Header("Content-Length", strconv.Itoa(length))
}

// String sets the response's body to the passed string
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the response's body to passed slice WITHOUT COPYING. Changing
// the passed slice later will affect the response by itself
func (r *Response) Bytes(body []byte) *Response {
	r.fields.Body = body
	return r
}

// HeaderValue returns the value of the first header with the key, compared
// case-insensitively.
func (r *Response) HeaderValue(key string) (value string, found bool) {
	for _, header := range r.fields.Headers {
		if strcomp.EqualFold(header.Key, key) {
			return header.Value, true
		}
	}

	return "", false
}

// Reveal returns the response fields. The reason phrase is resolved at this point.
func (r *Response) Reveal() Fields {
	fields := r.fields
	if len(fields.Status) == 0 {
		fields.Status = status.Text(fields.Code)
	}

	return fields
}
