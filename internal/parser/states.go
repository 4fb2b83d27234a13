package parser

// RequestState is a general state of the parser that tells a caller about
// current state of the request. It may be incomplete (Pending), complete
// (Completed), and completed with an error (Error). Both Completed and Error
// are final: the parser never leaves them.
type RequestState uint8

const (
	Pending RequestState = iota + 1
	Completed
	Error
)
