package headers

import "strings"

// MethodKey is a synthetic entry carrying the request method token. It can never be
// sent by a client, because a colon always ends the header name.
const MethodKey = ":method"

// Header is a single name-value pair of a response. Order of response headers matters,
// so they are stored as a slice of pairs.
type Header struct {
	Key   string
	Value string
}

// Headers maps lowercased request header names to their raw values. Values are kept
// as they were received, including the leading whitespace. Repeated headers overwrite
// each other, so the last one wins.
type Headers map[string]string

func New() Headers {
	return make(Headers)
}

// Add stores the value, lowercasing the key.
func (h Headers) Add(key, value string) Headers {
	h[strings.ToLower(key)] = value
	return h
}

// Get returns the raw value of the header.
func (h Headers) Get(key string) (value string, found bool) {
	value, found = h[strings.ToLower(key)]
	return value, found
}

// Value returns the header value with surrounding whitespace trimmed, or an empty
// string if the header isn't presented.
func (h Headers) Value(key string) string {
	value, _ := h.Get(key)
	return strings.TrimSpace(value)
}

// Method returns the method token stored by the parser.
func (h Headers) Method() string {
	return h[MethodKey]
}

func (h Headers) SetMethod(token string) {
	h[MethodKey] = token
}

// Len returns the number of real headers, excluding synthetic ones.
func (h Headers) Len() int {
	if _, found := h[MethodKey]; found {
		return len(h) - 1
	}

	return len(h)
}
