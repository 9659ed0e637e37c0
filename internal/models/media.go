package models

import (
	"fmt"
	"strings"
)

// MediaType classifies an uploaded file by its top-level MIME type
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// MediaTypeFromMIME maps a Content-Type header to a MediaType when its
// top-level type is one of the allowed kinds, otherwise an error
func MediaTypeFromMIME(contentType string, allowed ...MediaType) (MediaType, error) {
	top, _, found := strings.Cut(contentType, "/")
	if !found {
		return "", fmt.Errorf("unsupported media type %q", contentType)
	}

	kind := MediaType(strings.ToLower(strings.TrimSpace(top)))
	for _, a := range allowed {
		if kind == a {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unsupported media type %q", contentType)
}
