package base64_test

import (
	"testing"

	"stagehand/shared/base64"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

func TestGetContentType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "png", input: pixel, expected: "image/png"},
		{name: "text", input: "data:text/plain;base64,SGVsbG8=", expected: "text/plain"},
		{name: "empty", input: "", expected: ""},
		{name: "missing prefix", input: "image/png;base64,SGVsbG8=", expected: ""},
		{name: "missing marker", input: "data:image/png,SGVsbG8=", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, base64.GetContentType(tt.input))
		})
	}
}

func TestDecode(t *testing.T) {
	contentType, data, err := base64.Decode("data:text/plain;base64,SGVsbG8gV29ybGQ=")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", contentType)
	assert.Equal(t, "Hello World", string(data))

	_, _, err = base64.Decode("data:text/plain;base64,***")
	require.ErrorIs(t, err, base64.ErrInvalidDataURI)

	_, _, err = base64.Decode("plain text")
	require.ErrorIs(t, err, base64.ErrInvalidDataURI)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".png", base64.Extension("image/png"))
	assert.Equal(t, ".jpg", base64.Extension("image/jpeg"))
	assert.Equal(t, ".svg", base64.Extension("image/svg+xml"))
	assert.Empty(t, base64.Extension("garbage"))
}
