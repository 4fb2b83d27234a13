package render

import (
	"io"

	"github.com/valyala/bytebufferpool"
	"github.com/veteranandreich/Async-web-server/http"
)

// Write renders the response into a pooled buffer and writes it at once. If omitBody is
// set, the body isn't written, however headers stay intact, including Content-Length.
// This is how responses to HEAD requests are sent.
func Write(w io.Writer, response *http.Response, omitBody bool) error {
	fields := response.Reveal()

	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	buff.B = AppendHead(buff.B, fields.Code, fields.Status, fields.Headers)
	if !omitBody {
		buff.B = append(buff.B, fields.Body...)
	}

	_, err := buff.WriteTo(w)
	return err
}
