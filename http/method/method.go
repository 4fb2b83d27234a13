package method

// Method is a request method recognized on the wire. Only GET, HEAD and POST are served,
// the rest is known just to be reported properly in logs.
type Method uint8

const (
	Unknown Method = iota
	GET
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH
)

// List contains all the known HTTP methods, sorted by their integer value. Unknown
// method is not included.
var List = []Method{GET, HEAD, POST, PUT, DELETE, CONNECT, OPTIONS, TRACE, PATCH}

var names = [...]string{
	Unknown: "UNKNOWN",
	GET:     "GET",
	HEAD:    "HEAD",
	POST:    "POST",
	PUT:     "PUT",
	DELETE:  "DELETE",
	CONNECT: "CONNECT",
	OPTIONS: "OPTIONS",
	TRACE:   "TRACE",
	PATCH:   "PATCH",
}

func (m Method) String() string {
	if int(m) >= len(names) {
		return names[Unknown]
	}

	return names[m]
}

// Parse recognizes the method token. Tokens are case-sensitive, so "get" isn't GET.
func Parse(token string) Method {
	for _, m := range List {
		if names[m] == token {
			return m
		}
	}

	return Unknown
}
