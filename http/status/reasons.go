package status

const unknown = "???"

type reason struct {
	Short Status
	Long  string
}

// reasons are short phrases used in status lines and long descriptions used as
// bodies of error responses.
var reasons = map[Code]reason{
	OK: {"OK", "Request fulfilled, document follows"},
	BadRequest: {
		"Bad Request", "Bad request syntax or unsupported method",
	},
	Forbidden: {
		"Forbidden", "Request forbidden -- authorization will not help",
	},
	NotFound: {
		"Not Found", "Nothing matches the given URI",
	},
	MethodNotAllowed: {
		"Method Not Allowed", "Specified method is invalid for this resource.",
	},
	InternalServerError: {
		"Internal Server Error", "Server got itself in trouble",
	},
}

// Describe returns the reason phrase and the long description of the code. Both are
// "???" for codes the server doesn't know about.
func Describe(code Code) (short Status, long string) {
	r, found := reasons[code]
	if !found {
		return unknown, unknown
	}

	return r.Short, r.Long
}
