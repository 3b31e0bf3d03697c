package base64

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid base64 data uri")

// GetContentType returns the media type of a "data:<type>;base64,<payload>" string.
func GetContentType(file string) string {
	start := len("data:")
	end := strings.Index(file, ";base64,")

	if !strings.HasPrefix(file, "data:") || end == -1 || end < start {
		return ""
	}

	return file[start:end]
}

// Decode splits a data uri into its media type and decoded payload.
func Decode(file string) (contentType string, data []byte, err error) {
	contentType = GetContentType(file)
	if contentType == "" {
		return "", nil, ErrInvalidDataURI
	}

	payload := file[strings.Index(file, ";base64,")+len(";base64,"):]

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
	}

	return contentType, data, nil
}

// Extension maps an image media type to a file extension.
func Extension(contentType string) string {
	_, subtype, found := strings.Cut(contentType, "/")
	if !found {
		return ""
	}

	if subtype == "jpeg" {
		return ".jpg"
	}

	return "." + strings.TrimSuffix(subtype, "+xml")
}
