// Package uri converts between the file:// URIs the LSP wire format uses
// and the plain filesystem paths every internal package operates on.
package uri

import "strings"

const filePrefix = "file://"

// Path strips a file:// URI down to a plain path. A URI missing the
// prefix is returned unchanged, since some clients send bare paths in
// non-conformant requests.
func Path(u string) string {
	return strings.TrimPrefix(u, filePrefix)
}

// FromPath builds a file:// URI from a plain path.
func FromPath(path string) string {
	if strings.HasPrefix(path, filePrefix) {
		return path
	}
	return filePrefix + path
}
