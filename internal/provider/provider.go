package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
)

// FaceAnalyzer sends an encoded image to a face analysis backend and returns
// one record per detected face, with rectangles in the image's pixel space.
type FaceAnalyzer interface {
	Analyze(ctx context.Context, image []byte) ([]domain.FaceRecord, error)

	// MaxImageBytes is the largest payload the backend accepts.
	MaxImageBytes() int
}
