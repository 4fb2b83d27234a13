package parser

// Parser is a general interface for a stream-based requests parser. Data is
// fed in chunks of arbitrary size, as they come from the socket. Once Error is
// returned, the error carries the status code to be responded with.
type Parser interface {
	Parse(data []byte) (state RequestState, err error)
}
