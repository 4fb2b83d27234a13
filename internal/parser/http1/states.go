package http1

type parserState uint8

const (
	// eLineAndHeaders collects everything up to the blank line
	eLineAndHeaders parserState = iota + 1
	// eBodyFixed collects exactly Content-Length bytes
	eBodyFixed
	eDone
	eError
)

func (p parserState) String() string {
	switch p {
	case eLineAndHeaders:
		return "line-and-headers"
	case eBodyFixed:
		return "body-fixed"
	case eDone:
		return "done"
	case eError:
		return "error"
	default:
		return "unknown"
	}
}
