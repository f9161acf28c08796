package handler

import (
	"io/fs"
	"strings"
)

const indexFile = "index.html"

// ResolvePath maps a URI path onto the document root by plain concatenation.
// Dot segments are not normalized, so "/../x" escapes root.
func ResolvePath(root, uriPath string) string {
	if strings.HasSuffix(uriPath, "/") {
		return root + uriPath + indexFile
	}
	return root + uriPath
}

// IsExecutable reports whether any of the owner, group or other execute bits
// is set.
func IsExecutable(mode fs.FileMode) bool {
	return mode.Perm()&0o111 != 0
}
