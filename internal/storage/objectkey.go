package storage

import (
	"net/url"
	"strings"
)

// Accepted image media types for staged uploads.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

// AllowedImageType reports whether a declared media type may be staged
// against an image leaf.
func AllowedImageType(mimeType string) bool {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case MIMEPNG, MIMEJPEG, "image/jpg":
		return true
	default:
		return false
	}
}

// NormalizeKey reduces a stored reference to its bare object key. The store
// hands keys back in two shapes: bare ("images/a.jpg") or as a full view URL
// carrying the key in the objectKey query parameter. Outbound payloads always
// want the bare form. Malformed or empty input reduces to "".
func NormalizeKey(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if !strings.Contains(ref, "://") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return u.Query().Get("objectKey")
}
