package rekognition

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facemood/internal/audit"
	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemood/internal/provider"
)

const (
	// maxImageSize is the maximum image size accepted by DetectFaces with inline bytes (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Provider implements provider.FaceAnalyzer using Rekognition DetectFaces.
type Provider struct {
	client      *Client
	auditLogger audit.Logger
}

// ProviderOption defines optional configuration for Provider
type ProviderOption func(*Provider)

func WithAuditLogger(logger audit.Logger) ProviderOption {
	return func(p *Provider) {
		p.auditLogger = logger
	}
}

var _ provider.FaceAnalyzer = (*Provider)(nil)

func NewProvider(ctx context.Context, cfg Config, opts ...ProviderOption) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return NewProviderWithClient(client, opts...), nil
}

func NewProviderWithClient(client *Client, opts ...ProviderOption) *Provider {
	p := &Provider{client: client}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) MaxImageBytes() int {
	return maxImageSize
}

// logAudit is fire-and-forget; audit failures never fail the call.
func (p *Provider) logAudit(ctx context.Context, success bool, faces int, err error, imageSize int) {
	if p.auditLogger == nil {
		return
	}

	event := audit.Event{
		EventType: audit.EventProviderCallCompleted,
		Provider:  "rekognition",
		FaceCount: faces,
		Success:   success,
		Metadata: map[string]string{
			"image_size": strconv.Itoa(imageSize),
			"region":     p.client.Region(),
		},
	}
	if err != nil {
		event.EventType = audit.EventProviderCallFailed
		event.Error = err.Error()
	}

	_ = p.auditLogger.Log(ctx, event)
}

// validateImage checks size limits and returns the decoded dimensions,
// which are needed to turn Rekognition's ratio boxes into pixels.
func validateImage(img []byte) (image.Config, error) {
	if len(img) == 0 {
		return image.Config{}, ErrInvalidImage
	}
	if len(img) < minImageSize {
		return image.Config{}, fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(img), minImageSize)
	}
	if len(img) > maxImageSize {
		return image.Config{}, fmt.Errorf("%w: %d bytes, maximum %d", ErrImageTooLarge, len(img), maxImageSize)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return cfg, nil
}

// Analyze detects faces and their emotions. Rekognition does not issue face
// IDs for DetectFaces, so each record gets a fresh UUID.
func (p *Provider) Analyze(ctx context.Context, img []byte) ([]domain.FaceRecord, error) {
	dims, err := validateImage(img)
	if err != nil {
		p.logAudit(ctx, false, 0, err, len(img))
		return nil, fmt.Errorf("analyze faces: %w", err)
	}

	output, err := p.client.rekognition.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: img,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		err = mapAPIError(err)
		p.logAudit(ctx, false, 0, err, len(img))
		return nil, fmt.Errorf("analyze faces: %w", err)
	}

	records := make([]domain.FaceRecord, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		records = append(records, domain.FaceRecord{
			ID:        uuid.NewString(),
			Rectangle: toRectangle(detail.BoundingBox, dims.Width, dims.Height),
			Emotion:   toEmotionScores(detail.Emotions),
		})
	}

	p.logAudit(ctx, true, len(records), nil, len(img))

	return records, nil
}

func toRectangle(box *types.BoundingBox, width, height int) domain.Rectangle {
	if box == nil {
		return domain.Rectangle{}
	}
	return domain.Rectangle{
		Left:   int(deref(box.Left) * float32(width)),
		Top:    int(deref(box.Top) * float32(height)),
		Width:  int(deref(box.Width) * float32(width)),
		Height: int(deref(box.Height) * float32(height)),
	}
}

// toEmotionScores maps Rekognition's emotion types onto the eight scores.
// Contempt has no Rekognition counterpart and CONFUSED has no slot here.
func toEmotionScores(emotions []types.Emotion) domain.EmotionScores {
	var e domain.EmotionScores
	for _, em := range emotions {
		v := float64(deref(em.Confidence)) / 100
		switch em.Type {
		case types.EmotionNameAngry:
			e.Anger = v
		case types.EmotionNameDisgusted:
			e.Disgust = v
		case types.EmotionNameFear:
			e.Fear = v
		case types.EmotionNameHappy:
			e.Happiness = v
		case types.EmotionNameCalm:
			e.Neutral = v
		case types.EmotionNameSad:
			e.Sadness = v
		case types.EmotionNameSurprised:
			e.Surprise = v
		}
	}
	return e
}

func deref(f *float32) float32 {
	if f == nil {
		return 0
	}
	return *f
}
