// Package imaging holds the pixel operations used around face analysis:
// decoding uploads, framing faces, rotating captured stills and shrinking
// payloads to fit a backend's size limit.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"math"
	"slices"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidRotation   = errors.New("rotation must be a multiple of 90 degrees")
	ErrCannotFit         = errors.New("image cannot be reduced below size limit")
)

// AcceptedTypes lists the MIME types Decode understands.
var AcceptedTypes = []string{"image/jpeg", "image/png"}

// FrameColor and FrameWidth are the stroke used to outline detected faces.
var (
	FrameColor = color.RGBA{R: 255, A: 255}
	FrameWidth = 8
)

// DetectMIME sniffs the content type of data.
func DetectMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

// Decode sniffs data and decodes it when it is a JPEG or PNG.
func Decode(data []byte) (image.Image, string, error) {
	mime := DetectMIME(data)
	if !slices.Contains(AcceptedTypes, mime) {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", mime, err)
	}
	return img, format, nil
}

func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Clone copies src into a new RGBA image with the same bounds.
func Clone(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// DrawRectangles returns a copy of src with each rectangle outlined. The
// stroke is centred on the rectangle edge. src is never written to.
func DrawRectangles(src image.Image, rects []image.Rectangle, c color.Color, width int) *image.RGBA {
	dst := Clone(src)
	if width <= 0 {
		return dst
	}

	fill := image.NewUniform(c)
	bounds := dst.Bounds()
	half := width / 2

	for _, r := range rects {
		outer := r.Canon().Inset(-half)
		inner := outer.Inset(width)
		if inner.Empty() {
			draw.Draw(dst, outer.Intersect(bounds), fill, image.Point{}, draw.Src)
			continue
		}

		bands := []image.Rectangle{
			image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y),
			image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y),
			image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y),
			image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y),
		}
		for _, band := range bands {
			draw.Draw(dst, band.Intersect(bounds), fill, image.Point{}, draw.Src)
		}
	}

	return dst
}

// Rotate turns img clockwise by degrees, which must be a multiple of 90.
func Rotate(img image.Image, degrees int) (image.Image, error) {
	d := ((degrees % 360) + 360) % 360
	if d%90 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRotation, degrees)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.RGBA
	switch d {
	case 0:
		return Clone(img), nil
	case 90, 270:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	default:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := img.At(b.Min.X+x, b.Min.Y+y)
			switch d {
			case 90:
				dst.Set(h-1-y, x, px)
			case 180:
				dst.Set(w-1-x, h-1-y, px)
			case 270:
				dst.Set(y, w-1-x, px)
			}
		}
	}

	return dst, nil
}

const maxFitAttempts = 8

// FitWithin encodes img as JPEG and, while the result is larger than
// maxBytes, shrinks the image and tries again. It returns the payload and
// the ratio between the encoded width and the original width.
func FitWithin(img image.Image, maxBytes, quality int) ([]byte, float64, error) {
	data, err := EncodeJPEG(img, quality)
	if err != nil {
		return nil, 0, err
	}
	if len(data) <= maxBytes {
		return data, 1, nil
	}

	origW := img.Bounds().Dx()
	scale := 1.0
	for attempt := 0; attempt < maxFitAttempts; attempt++ {
		// encoded size grows roughly with area, hence the square root
		scale *= math.Sqrt(float64(maxBytes)/float64(len(data))) * 0.95
		w := uint(math.Max(1, math.Round(float64(origW)*scale)))

		small := resize.Resize(w, 0, img, resize.Lanczos3)
		data, err = EncodeJPEG(small, quality)
		if err != nil {
			return nil, 0, err
		}
		if len(data) <= maxBytes {
			return data, float64(small.Bounds().Dx()) / float64(origW), nil
		}
	}

	return nil, 0, fmt.Errorf("%w: %d bytes after %d attempts", ErrCannotFit, len(data), maxFitAttempts)
}
