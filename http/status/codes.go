package status

type (
	Code   uint16
	Status string
)

// HTTP status codes, a subset of the ones registered with IANA which might ever be
// produced by the server.
// See: https://www.iana.org/assignments/http-status-codes/http-status-codes.xhtml
const (
	OK Code = 200 // RFC 9110, 15.3.1

	BadRequest            Code = 400 // RFC 9110, 15.5.1
	Forbidden             Code = 403 // RFC 9110, 15.5.4
	NotFound              Code = 404 // RFC 9110, 15.5.5
	MethodNotAllowed      Code = 405 // RFC 9110, 15.5.6
	RequestTimeout        Code = 408 // RFC 9110, 15.5.9
	LengthRequired        Code = 411 // RFC 9110, 15.5.12
	RequestEntityTooLarge Code = 413 // RFC 9110, 15.5.14

	InternalServerError Code = 500 // RFC 9110, 15.6.1
	NotImplemented      Code = 501 // RFC 9110, 15.6.2
)

// Text returns the reason phrase for the code. Unknown codes result in "???", which is
// how they are rendered in the status line, too.
func Text(code Code) Status {
	short, _ := Describe(code)
	return short
}
