package uridecode

import (
	"bytes"

	"github.com/veteranandreich/Async-web-server/internal/hexconv"
)

// Decode translates percent-encoded sequences into their true form. Malformed sequences
// (a '%' not followed by two hex digits) are kept as they are. The result is appended to
// buff, except the case when src contains nothing to decode, so src itself is returned.
func Decode(src, buff []byte) []byte {
	i := bytes.IndexByte(src, '%')
	if i == -1 {
		return src
	}

	for ; i != -1; i = bytes.IndexByte(src, '%') {
		buff = append(buff, src[:i]...)

		if i+2 >= len(src) {
			buff = append(buff, '%')
			src = src[i+1:]
			continue
		}

		char, ok := hexconv.Pair(src[i+1], src[i+2])
		if !ok {
			buff = append(buff, '%')
			src = src[i+1:]
			continue
		}

		buff = append(buff, char)
		src = src[i+3:]
	}

	return append(buff, src...)
}
