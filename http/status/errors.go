package status

import "errors"

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// CodeOf extracts the status code carried by the error. Errors that aren't HTTPError
// are considered internal.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}

var (
	ErrBadRequestLine      = NewError(BadRequest, "malformed request line")
	ErrHeadersTooLarge     = NewError(BadRequest, "too large headers section")
	ErrNoContentLength     = NewError(BadRequest, "content-length is required")
	ErrBadContentLength    = NewError(BadRequest, "content-length must be a positive integer")
	ErrNoContentType       = NewError(BadRequest, "content-type is required")
	ErrBodyTooLarge        = NewError(BadRequest, "request body is too large")
	ErrBadMultipart        = NewError(BadRequest, "malformed multipart body")
	ErrForbidden           = NewError(Forbidden, "forbidden")
	ErrNotFound            = NewError(NotFound, "not found")
	ErrMethodNotAllowed    = NewError(MethodNotAllowed, "method not allowed")
	ErrInternalServerError = NewError(InternalServerError, "internal server error")
)
