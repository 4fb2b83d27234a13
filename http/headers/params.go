package headers

import (
	"strings"

	"github.com/indigo-web/utils/strcomp"
)

// Param returns the value of a parameter of the header value, e.g. boundary of the
// multipart/form-data content type. The value is unquoted, if it was quoted.
func Param(value, name string) (param string, found bool) {
	for len(value) > 0 {
		var pair string
		pair, value, _ = strings.Cut(value, ";")
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		if idx := strings.LastIndexAny(key, " \t,"); idx != -1 {
			// the media type and the first parameter might be separated by something
			// else than a semicolon
			key = key[idx+1:]
		}

		if !strcomp.EqualFold(key, name) {
			continue
		}

		val = strings.TrimSpace(val)
		if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
			val = val[1 : len(val)-1]
		}

		return val, true
	}

	return "", false
}
