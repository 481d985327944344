package domain

import (
	"image"
	"time"
)

// Rectangle is a face bounding box in source-image pixel space.
type Rectangle struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether p lies inside the rectangle. The right and bottom
// edges are exclusive.
func (r Rectangle) Contains(p image.Point) bool {
	return p.X >= r.Left && p.X < r.Left+r.Width &&
		p.Y >= r.Top && p.Y < r.Top+r.Height
}

func (r Rectangle) Bounds() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// Scale multiplies every coordinate by f, rounding to the nearest pixel.
func (r Rectangle) Scale(f float64) Rectangle {
	return Rectangle{
		Left:   round(float64(r.Left) * f),
		Top:    round(float64(r.Top) * f),
		Width:  round(float64(r.Width) * f),
		Height: round(float64(r.Height) * f),
	}
}

func (r Rectangle) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// FaceRecord is one analyzed face. Values are never modified after parsing.
type FaceRecord struct {
	ID        string        `json:"id"`
	Rectangle Rectangle     `json:"rectangle"`
	Emotion   EmotionScores `json:"emotion"`
}

// FaceSet is the immutable result of one completed detection request.
type FaceSet struct {
	RequestID   string       `json:"request_id"`
	Faces       []FaceRecord `json:"faces"`
	Framed      image.Image  `json:"-"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	CompletedAt time.Time    `json:"completed_at"`
}

// Records returns a copy of the set's faces so callers cannot alter the
// published snapshot.
func (s *FaceSet) Records() []FaceRecord {
	if s == nil || len(s.Faces) == 0 {
		return []FaceRecord{}
	}
	out := make([]FaceRecord, len(s.Faces))
	copy(out, s.Faces)
	return out
}

func (s *FaceSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Faces)
}
