// Package imaging validates uploaded images and computes output geometry.
// It never transforms pixels beyond optional downscaling before upload.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"regexp"
	"strings"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes is the decoded upload cap.
const DefaultMaxBytes = 10 << 20

var dataURLPattern = regexp.MustCompile(`^data:([a-zA-Z0-9]+/[a-zA-Z0-9.+-]+)?(;[a-zA-Z0-9=-]+)*;base64,`)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid image")

// Error describes why an image was rejected.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func (e *Error) Unwrap() error { return ErrInvalid }

func invalid(format string, args ...any) error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// Limits bounds what Inspect accepts. Zero values disable a check.
type Limits struct {
	MaxBytes     int64
	MaxDimension int
	AllowedTypes []string
}

// DefaultLimits mirror the public upload policy.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes:     DefaultMaxBytes,
		MaxDimension: 8192,
		AllowedTypes: []string{"image/png", "image/jpeg", "image/webp"},
	}
}

// Info describes a decoded upload.
type Info struct {
	MimeType string `json:"mimeType"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Bytes    int    `json:"bytes"`
}

// AspectRatio is width divided by height.
func (i Info) AspectRatio() float64 {
	if i.Height == 0 {
		return 0
	}
	return float64(i.Width) / float64(i.Height)
}

// Dimensions returns the pixel size of the image.
func (i Info) Dimensions() Dimensions {
	return Dimensions{Width: i.Width, Height: i.Height}
}

// DecodeDataURL extracts the payload of a base64 data URL. A bare base64
// string is accepted as well. The declared media type, if any, is returned.
func DecodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", invalid("image data is required")
	}

	declared := ""
	if strings.HasPrefix(s, "data:") {
		loc := dataURLPattern.FindStringSubmatchIndex(s)
		if loc == nil {
			return nil, "", invalid("image data must be a base64 data URL")
		}
		if loc[2] >= 0 {
			declared = strings.ToLower(s[loc[2]:loc[3]])
		}
		s = s[loc[1]:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, "", invalid("image data is not valid base64")
		}
	}
	if len(data) == 0 {
		return nil, "", invalid("image data is empty")
	}
	return data, declared, nil
}

// EncodeDataURL renders data as a base64 data URL.
func EncodeDataURL(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// EnsureDataURL prefixes a bare base64 payload with a PNG data URL header.
func EnsureDataURL(s string) string {
	if strings.HasPrefix(s, "data:") {
		return s
	}
	return "data:image/png;base64," + s
}

// Inspect decodes the image header and enforces limits.
func Inspect(data []byte, limits Limits) (*Info, error) {
	if limits.MaxBytes > 0 && int64(len(data)) > limits.MaxBytes {
		return nil, invalid("image is too large: %s exceeds the %s limit", formatBytes(int64(len(data))), formatBytes(limits.MaxBytes))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, invalid("unsupported or corrupt image")
	}
	info := &Info{
		MimeType: "image/" + format,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Bytes:    len(data),
	}

	if len(limits.AllowedTypes) > 0 && !contains(limits.AllowedTypes, info.MimeType) {
		return nil, invalid("image type %s is not supported (allowed: %s)", info.MimeType, strings.Join(limits.AllowedTypes, ", "))
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, invalid("image has no pixels")
	}
	if limits.MaxDimension > 0 && (info.Width > limits.MaxDimension || info.Height > limits.MaxDimension) {
		return nil, invalid("image dimensions %dx%d exceed the %d pixel limit", info.Width, info.Height, limits.MaxDimension)
	}
	return info, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%.1fMB", float64(n)/mb)
	}
	return fmt.Sprintf("%dB", n)
}
