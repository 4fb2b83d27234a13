package http1

import (
	"bytes"

	"github.com/indigo-web/utils/uf"
	"github.com/veteranandreich/Async-web-server/http/status"
)

// extractPart returns the payload of the single part embedded into the multipart body.
// The payload starts right after the blank line ending the part's headers and lasts
// until the closing boundary marker, excluding the line break preceding it. No further
// parts are recognized.
func extractPart(body []byte, boundary string) ([]byte, error) {
	start := bytes.Index(body, uf.S2B(blankLine))
	if start == -1 {
		return nil, status.ErrBadMultipart
	}

	start += len(blankLine)
	closing := "--" + boundary + "--"
	end := bytes.Index(body[start:], uf.S2B(closing))
	if end == -1 {
		return nil, status.ErrBadMultipart
	}

	part := body[start : start+end]
	if bytes.HasSuffix(part, []byte("\r\n")) {
		part = part[:len(part)-2]
	} else if bytes.HasSuffix(part, []byte("\n")) {
		part = part[:len(part)-1]
	}

	return part, nil
}
