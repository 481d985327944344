package handler

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facemood/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
)

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})
}

// stubAnalyzer returns fixed faces or an error.
type stubAnalyzer struct {
	faces []domain.FaceRecord
	err   error
	calls chan []byte
}

func (a *stubAnalyzer) Analyze(ctx context.Context, img []byte) ([]domain.FaceRecord, error) {
	if a.calls != nil {
		a.calls <- img
	}
	return a.faces, a.err
}

func (a *stubAnalyzer) MaxImageBytes() int {
	return 4 * 1024 * 1024
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func sampleFaces() []domain.FaceRecord {
	return []domain.FaceRecord{
		{
			ID:        "face-1",
			Rectangle: domain.Rectangle{Left: 10, Top: 10, Width: 50, Height: 50},
			Emotion:   domain.EmotionScores{Happiness: 0.8, Neutral: 0.2},
		},
		{
			ID:        "face-2",
			Rectangle: domain.Rectangle{Left: 100, Top: 20, Width: 40, Height: 40},
			Emotion:   domain.EmotionScores{Sadness: 0.7, Neutral: 0.3},
		},
	}
}
