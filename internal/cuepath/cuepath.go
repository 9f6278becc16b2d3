// Package cuepath canonicalizes the virtual sub-paths MPD reports for CUE
// containers. A single physical file holding several logical tracks is
// exposed as container/CUE_TRACK<n> entries; euphony caches each logical
// track under the canonical zero-padded form of that path so every queue
// item maps to exactly one cache key.
package cuepath

import (
	"fmt"
	"strconv"
	"strings"
)

// Marker prefixes the track segment of a CUE virtual sub-path. MPD clients
// are not consistent about case, so matching is case-insensitive.
const Marker = "CUE_TRACK"

// Split breaks a remote path into its container and track index. ok is
// false when the path is not a CUE virtual sub-path, in which case the
// path should be used as-is.
func Split(path string) (container string, track int, ok bool) {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 || i == len(path)-1 {
		return "", 0, false
	}

	segment := path[i+1:]
	if len(segment) <= len(Marker) {
		return "", 0, false
	}
	if !strings.EqualFold(segment[:len(Marker)], Marker) {
		return "", 0, false
	}

	n, err := strconv.Atoi(segment[len(Marker):])
	if err != nil || n <= 0 {
		return "", 0, false
	}
	return path[:i], n, true
}

// Join builds the canonical virtual sub-path for a track of a container.
// The inverse of [Split] up to marker case and zero padding.
func Join(container string, track int) string {
	return fmt.Sprintf("%s/%s%03d", container, Marker, track)
}

// Canonical normalizes a remote path into its cache-key form: CUE virtual
// sub-paths get an upper-case marker and a zero-padded index, everything
// else passes through unchanged.
func Canonical(path string) string {
	container, track, ok := Split(path)
	if !ok {
		return path
	}
	return Join(container, track)
}
