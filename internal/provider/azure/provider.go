package azure

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
)

// Provider implements provider.FaceAnalyzer on top of the Face API client
type Provider struct {
	client *Client
}

func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

func (p *Provider) MaxImageBytes() int {
	return MaxImageBytes
}

// Analyze returns the faces in response order.
func (p *Provider) Analyze(ctx context.Context, image []byte) ([]domain.FaceRecord, error) {
	faces, err := p.client.Detect(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("analyze faces: %w", err)
	}

	records := make([]domain.FaceRecord, 0, len(faces))
	for _, f := range faces {
		records = append(records, toRecord(f))
	}

	return records, nil
}

// toRecord expects a face that already passed validation.
func toRecord(f DetectedFace) domain.FaceRecord {
	r := f.FaceRectangle
	e := f.FaceAttributes.Emotion
	return domain.FaceRecord{
		ID: *f.FaceID,
		Rectangle: domain.Rectangle{
			Left:   *r.Left,
			Top:    *r.Top,
			Width:  *r.Width,
			Height: *r.Height,
		},
		Emotion: domain.EmotionScores{
			Anger:     *e.Anger,
			Contempt:  *e.Contempt,
			Disgust:   *e.Disgust,
			Fear:      *e.Fear,
			Happiness: *e.Happiness,
			Neutral:   *e.Neutral,
			Sadness:   *e.Sadness,
			Surprise:  *e.Surprise,
		},
	}
}
