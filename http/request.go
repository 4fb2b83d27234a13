package http

import (
	"github.com/veteranandreich/Async-web-server/http/headers"
	"github.com/veteranandreich/Async-web-server/http/method"
)

// Request represents an HTTP request. It is filled field-by-field by the parser as
// parsing phases complete.
type Request struct {
	// Method is an enum representing the request method. The raw token is also stored
	// in Headers under the headers.MethodKey.
	Method method.Method
	// Path is the raw request target, including the query. It is neither decoded nor
	// normalized.
	Path string
	// Headers maps lowercased names to raw values.
	Headers headers.Headers
	// Body is the request entity for POST requests. If a multipart boundary was
	// presented, only the payload of the single part is stored here.
	Body []byte
	// Boundary is the multipart boundary, if the Content-Type provided one.
	Boundary string
}

func NewRequest() *Request {
	return &Request{
		Method:  method.Unknown,
		Headers: headers.New(),
	}
}
