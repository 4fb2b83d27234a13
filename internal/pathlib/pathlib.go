package pathlib

import (
	"strings"

	"github.com/indigo-web/utils/uf"
	"github.com/veteranandreich/Async-web-server/internal/uridecode"
)

const (
	parentToken = "/.."
	traversal   = "../"
)

// Normalize rewrites a raw request path into a decoded one that is safe to be joined
// with a document root. The query, if any, is cut off. The result never contains
// the "../" sequence, including cases of percent-encoded traversal.
func Normalize(path string) string {
	if strings.HasPrefix(path, ".") {
		path = "/" + path
	}

	path = collapse(path)
	path = strings.ReplaceAll(path, "/./", "/")

	decoded := uridecode.Decode(uf.S2B(path), nil)
	if len(decoded) != len(path) {
		// decoding happened, so we own the memory and can avoid copying it
		path = uf.B2S(decoded)
	}

	if query := strings.IndexByte(path, '?'); query != -1 {
		path = path[:query]
	}

	if hasTraversal(path) {
		// an escaped traversal was decoded right into an actual one
		path = strings.ReplaceAll(collapse(path), "/./", "/")
	}

	if len(path) == 0 {
		return "/"
	}

	return path
}

// collapse removes parent-segment tokens one by one. Every token eats the segment
// preceding it, or simply disappears if there's none. Every iteration shortens the
// path, so the loop always terminates.
func collapse(path string) string {
	for hasTraversal(path) {
		token := strings.Index(path, parentToken)
		if token == -1 {
			// the "../" belongs to a segment like "a../", there's no parent to consume
			path = strings.Replace(path, traversal, "", 1)
			continue
		}

		parent := strings.LastIndexByte(path[:token], '/')
		if parent == -1 {
			path = path[:token] + path[token+len(parentToken):]
			continue
		}

		path = path[:parent] + path[token+len(parentToken):]
	}

	return path
}

func hasTraversal(path string) bool {
	return strings.Contains(path, traversal) || strings.HasSuffix(path, parentToken)
}
