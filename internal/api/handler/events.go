package handler

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/facemood/internal/camera"
	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemood/internal/service"
	"github.com/saturnino-fabrica-de-software/facemood/internal/ws"
)

// Broadcaster is the subset of ws.Hub used to publish events.
type Broadcaster interface {
	Broadcast(eventType ws.EventType, data interface{})
}

// FailedPayload is the data of a detection.failed event.
type FailedPayload struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// CapturedPayload is the data of a camera.captured event.
type CapturedPayload struct {
	DetectionID string    `json:"detection_id"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CapturedAt  time.Time `json:"captured_at"`
}

// EventSink forwards detection events to websocket clients.
func EventSink(b Broadcaster) service.EventSink {
	return func(e service.Event) {
		switch e.Type {
		case service.EventDetectionStarted:
			b.Broadcast(ws.EventDetectionStarted, AcceptedResponse{ID: e.RequestID, Status: "pending"})
		case service.EventDetectionCompleted:
			if e.Result == nil {
				return
			}
			resp := toDetectionResponse(e.Result.Set)
			resp.DurationMs = e.Result.Duration.Milliseconds()
			b.Broadcast(ws.EventDetectionCompleted, resp)
		case service.EventDetectionFailed:
			payload := FailedPayload{ID: e.RequestID, Code: domain.ErrDetectionFailed.Code}
			if e.Err != nil {
				payload.Error = e.Err.Error()
				if code := domain.CodeOf(e.Err); code != "" {
					payload.Code = code
				}
			}
			b.Broadcast(ws.EventDetectionFailed, payload)
		}
	}
}

// Detector submits decoded images for analysis.
type Detector interface {
	DetectImage(ctx context.Context, img image.Image) *service.Pending
}

// CaptureListener submits every captured still for detection and announces
// the capture.
func CaptureListener(d Detector, b Broadcaster, logger *slog.Logger) camera.Listener {
	log := logger.With("component", "capture")
	return func(img image.Image) {
		pending := d.DetectImage(context.Background(), img)
		bounds := img.Bounds()

		b.Broadcast(ws.EventCameraCaptured, CapturedPayload{
			DetectionID: pending.ID(),
			Width:       bounds.Dx(),
			Height:      bounds.Dy(),
			CapturedAt:  time.Now().UTC(),
		})
		log.Info("still submitted for detection", "detection_id", pending.ID())
	}
}
