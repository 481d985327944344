package presenter

import (
	"errors"
	"image"
	"math"

	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemood/internal/imaging"
)

var ErrDegenerateTransform = errors.New("view transform has a zero scale")

// Transform is the affine mapping from source pixels to view coordinates:
// view = source*Scale + Translate.
type Transform struct {
	ScaleX     float64 `json:"scale_x"`
	ScaleY     float64 `json:"scale_y"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// Identity is the transform of an unscaled, untranslated view.
var Identity = Transform{ScaleX: 1, ScaleY: 1}

// ToSource maps a view point back to source pixels, truncating toward zero.
func (t Transform) ToSource(x, y float64) (image.Point, error) {
	if t.ScaleX == 0 || t.ScaleY == 0 {
		return image.Point{}, ErrDegenerateTransform
	}
	sx := (x - t.TranslateX) / t.ScaleX
	sy := (y - t.TranslateY) / t.ScaleY
	return image.Pt(int(math.Trunc(sx)), int(math.Trunc(sy))), nil
}

// HitTest returns the first face whose rectangle contains p. Overlaps are
// resolved purely by order.
func HitTest(faces []domain.FaceRecord, p image.Point) (domain.FaceRecord, bool) {
	for _, f := range faces {
		if f.Rectangle.Contains(p) {
			return f, true
		}
	}
	return domain.FaceRecord{}, false
}

// Pixel is a source image coordinate.
type Pixel struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TapResult is what a tap on a face shows: the face and its emotion list.
type TapResult struct {
	Point    Pixel               `json:"point"`
	Face     domain.FaceRecord   `json:"face"`
	Rows     []domain.EmotionRow `json:"emotions"`
	Dominant string              `json:"dominant"`
}

// Tap maps a view tap to source pixels and looks up the face under it.
// It returns domain.ErrNoFaceAtPoint when the tap misses every face.
func Tap(faces []domain.FaceRecord, view Transform, x, y float64) (*TapResult, error) {
	p, err := view.ToSource(x, y)
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	face, ok := HitTest(faces, p)
	if !ok {
		return nil, domain.ErrNoFaceAtPoint
	}

	return &TapResult{
		Point:    Pixel{X: p.X, Y: p.Y},
		Face:     face,
		Rows:     face.Emotion.Rows(),
		Dominant: face.Emotion.Dominant(),
	}, nil
}

// FrameFaces returns a copy of src with every face outlined in solid red.
func FrameFaces(src image.Image, faces []domain.FaceRecord) *image.RGBA {
	rects := make([]image.Rectangle, 0, len(faces))
	for _, f := range faces {
		rects = append(rects, f.Rectangle.Bounds())
	}
	return imaging.DrawRectangles(src, rects, imaging.FrameColor, imaging.FrameWidth)
}
