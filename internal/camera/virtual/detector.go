package virtual

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// FaceCounter reports how many faces appear in a frame.
type FaceCounter interface {
	CountFaces(img image.Image) int
}

// PigoDetector counts faces with the pigo pixel-intensity cascade.
type PigoDetector struct {
	classifier *pigo.Pigo
	minSize    int
	maxSize    int
	threshold  float32
}

// LoadPigoDetector reads and unpacks a pigo "facefinder" cascade file.
func LoadPigoDetector(path string) (*PigoDetector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cascade: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack cascade: %w", err)
	}

	return &PigoDetector{
		classifier: classifier,
		minSize:    20,
		maxSize:    1000,
		threshold:  5.0,
	}, nil
}

func (d *PigoDetector) CountFaces(img image.Image) int {
	src := pigo.ImgToNRGBA(img)
	cols, rows := src.Bounds().Max.X, src.Bounds().Max.Y
	params := pigo.CascadeParams{
		MinSize:     d.minSize,
		MaxSize:     d.maxSize,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	n := 0
	for _, det := range dets {
		if det.Q >= d.threshold {
			n++
		}
	}
	return n
}
