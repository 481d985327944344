package mock

import (
	"bytes"
	"context"
	"crypto/sha256"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemood/internal/provider"
)

const maxImageBytes = 8 * 1024 * 1024

var namespace = uuid.MustParse("4b1b8a3e-6f0e-4d6a-9f55-1f9c7f0f5a10")

// Provider implements provider.FaceAnalyzer for tests and local development.
// Output depends only on the image bytes.
type Provider struct{}

var _ provider.FaceAnalyzer = (*Provider)(nil)

func New() *Provider {
	return &Provider{}
}

func (p *Provider) MaxImageBytes() int {
	return maxImageBytes
}

// Analyze returns one or two faces laid out inside the image, with emotion
// scores derived from the SHA-256 of the payload.
func (p *Provider) Analyze(ctx context.Context, image []byte) ([]domain.FaceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h, err := dimensions(image)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	sum := sha256.Sum256(image)
	count := 1 + int(sum[0]%2)

	records := make([]domain.FaceRecord, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, domain.FaceRecord{
			ID:        uuid.NewSHA1(namespace, append(sum[:], byte(i))).String(),
			Rectangle: layout(i, count, w, h),
			Emotion:   scores(sum[1+i*8 : 9+i*8]),
		})
	}

	return records, nil
}

func dimensions(img []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// layout splits the image into count vertical strips and centres a square
// face in strip i.
func layout(i, count, w, h int) domain.Rectangle {
	strip := w / count
	side := strip / 2
	if h/2 < side {
		side = h / 2
	}
	return domain.Rectangle{
		Left:   i*strip + (strip-side)/2,
		Top:    (h - side) / 2,
		Width:  side,
		Height: side,
	}
}

// scores normalizes eight hash bytes so they sum to one.
func scores(b []byte) domain.EmotionScores {
	var total float64
	for _, v := range b {
		total += float64(v) + 1
	}
	f := func(i int) float64 { return (float64(b[i]) + 1) / total }
	return domain.EmotionScores{
		Anger:     f(0),
		Contempt:  f(1),
		Disgust:   f(2),
		Fear:      f(3),
		Happiness: f(4),
		Neutral:   f(5),
		Sadness:   f(6),
		Surprise:  f(7),
	}
}
