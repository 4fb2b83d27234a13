package dispatch

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// indexFile is served instead of a directory.
const indexFile = "index.html"

// Root opens the document root. Files are read via the returned fs.FS, which rejects
// every name escaping the directory, so it stays a second line of defence behind the
// path normalization.
func Root(dir string) (fs.FS, error) {
	stat, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("document root: %w", err)
	}

	if !stat.IsDir() {
		return nil, fmt.Errorf("document root: %s is not a directory", dir)
	}

	return os.DirFS(dir), nil
}

// fsName converts a normalized request path into a name accepted by fs.FS: unrooted,
// with no empty elements and no trailing slash. The root itself is ".".
func fsName(normalized string) string {
	name := strings.TrimPrefix(path.Clean("/"+normalized), "/")
	if len(name) == 0 {
		return "."
	}

	return name
}
