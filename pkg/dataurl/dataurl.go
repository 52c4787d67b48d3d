// Package dataurl parses and normalizes base64 image data URLs of the form
// data:image/<subtype>;base64,<payload>.
package dataurl

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

// MaxImageBytes caps uploaded course images.
const MaxImageBytes = 5 * 1024 * 1024

var (
	ErrInvalidFormat = errors.New("invalid image format")
	ErrTooLarge      = errors.New("image too large")
	ErrInvalidBase64 = errors.New("invalid base64 payload")
)

var imagePattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,(.+)$`)

type Image struct {
	Subtype  string
	MimeType string
	Payload  string
	Bytes    []byte
}

// EstimatedSize approximates the decoded length of a base64 payload. Padding
// is over-counted.
func EstimatedSize(payload string) int {
	return len(payload) * 3 / 4
}

// Parse validates format first, then the estimated size, then decodes.
func Parse(raw string) (*Image, error) {
	match := imagePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return nil, ErrInvalidFormat
	}
	subtype, payload := strings.ToLower(match[1]), match[2]

	if EstimatedSize(payload) > MaxImageBytes {
		return nil, ErrTooLarge
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidBase64
	}

	return &Image{
		Subtype:  subtype,
		MimeType: "image/" + subtype,
		Payload:  payload,
		Bytes:    decoded,
	}, nil
}

// String rebuilds the canonical data URL, without any whitespace the input
// carried around it.
func (img *Image) String() string {
	return "data:" + img.MimeType + ";base64," + img.Payload
}

// Normalize prefixes data:<mimeType>;base64, onto stored data that lacks it.
func Normalize(data, mimeType string) string {
	if data == "" || strings.HasPrefix(data, "data:") {
		return data
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + data
}

// Extension maps an image subtype onto a file extension.
func Extension(subtype string) string {
	switch subtype {
	case "jpeg", "pjpeg":
		return "jpg"
	case "svg+xml":
		return "svg"
	case "x-icon", "vnd.microsoft.icon":
		return "ico"
	default:
		return subtype
	}
}
