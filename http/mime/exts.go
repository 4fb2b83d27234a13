package mime

import (
	"path"
	"strings"
)

var Extension = map[string]MIME{
	".avif": AVIF,
	".css":  CSS,
	".gif":  GIF,
	".htm":  HTML,
	".html": HTML,
	".jpeg": JPEG,
	".jpg":  JPEG,
	".js":   JS,
	".mjs":  JS,
	".json": JSON,
	".pdf":  PDF,
	".png":  PNG,
	".svg":  SVG,
	".wasm": WASM,
	".webp": WEBP,
	".xml":  XML,
	".gz":   GZIP,
	".yaml": YAML,
	".yml":  YAML,
	".zip":  ZIP,
	".ico":  ICO,
	".swf":  SWF,
	".txt":  TXT,
}

// Guess returns the MIME type of the file judging by its extension. Extensions are
// case-insensitive; unknown ones are treated as arbitrary binary data.
func Guess(filename string) MIME {
	ext := path.Ext(filename)
	if m, found := Extension[ext]; found {
		return m
	}

	if m, found := Extension[strings.ToLower(ext)]; found {
		return m
	}

	return OctetStream
}
