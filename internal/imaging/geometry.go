package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// DefaultMaxOutputDimension caps each side of an upscaled target.
const DefaultMaxOutputDimension = 4096

// Dimensions is a pixel size.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// ScaleFactor maps an upscale resolution choice to a multiplier. Unknown
// values, including "custom", scale by 2.
func ScaleFactor(resolution string) int {
	switch resolution {
	case "4x":
		return 4
	case "8x":
		return 8
	default:
		return 2
	}
}

// TargetDimensions multiplies src by factor and clamps each side to limit
// independently. A non-positive limit disables the clamp.
func TargetDimensions(src Dimensions, factor, limit int) Dimensions {
	if factor < 1 {
		factor = 1
	}
	clamp := func(v int) int {
		v *= factor
		if limit > 0 && v > limit {
			return limit
		}
		return v
	}
	return Dimensions{Width: clamp(src.Width), Height: clamp(src.Height)}
}

// Fit downscales data so neither side exceeds maxDim, preserving aspect
// ratio. Images already within bounds are returned unchanged. JPEG sources
// are re-encoded as JPEG and everything else as PNG.
func Fit(data []byte, maxDim int) ([]byte, *Info, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, invalid("unsupported or corrupt image")
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, nil, invalid("image has no pixels")
	}

	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return data, &Info{MimeType: "image/" + format, Width: width, Height: height, Bytes: len(data)}, nil
	}

	newW, newH := maxDim, maxDim
	if width >= height {
		newH = max(1, height*maxDim/width)
	} else {
		newW = max(1, width*maxDim/height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	mimeType := "image/png"
	if format == "jpeg" {
		mimeType = "image/jpeg"
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
	} else {
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("encode resized image: %w", err)
	}

	out := buf.Bytes()
	return out, &Info{MimeType: mimeType, Width: newW, Height: newH, Bytes: len(out)}, nil
}
