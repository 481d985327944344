package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of auditable event
type EventType string

const (
	EventDetectionRequested EventType = "DETECTION_REQUESTED"
	EventDetectionCompleted EventType = "DETECTION_COMPLETED"
	EventDetectionFailed    EventType = "DETECTION_FAILED"
	EventFaceTapped         EventType = "FACE_TAPPED"
	EventCameraStarted      EventType = "CAMERA_STARTED"
	EventCameraStopped      EventType = "CAMERA_STOPPED"
	EventCameraCaptured     EventType = "CAMERA_CAPTURED"

	// Provider call events record a single round trip to a remote backend.
	// A detection that reaches the backend logs one of these in addition to
	// its own DETECTION_* event.
	EventProviderCallCompleted EventType = "PROVIDER_CALL_COMPLETED"
	EventProviderCallFailed    EventType = "PROVIDER_CALL_FAILED"
)

// Event is one record of an image leaving the process or a face being inspected.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"request_id,omitempty"`
	EventType EventType         `json:"event_type"`
	FaceID    string            `json:"face_id,omitempty"`
	Provider  string            `json:"provider"`
	FaceCount int               `json:"face_count,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	IPAddress string            `json:"ip_address,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event, filling in ID and timestamp when missing
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.EventType)),
		)
		return err
	}

	l.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("request_id", event.RequestID),
		slog.String("provider", event.Provider),
		slog.Bool("success", event.Success),
		slog.String("event_data", string(eventJSON)),
	)

	return nil
}

// NoOpLogger is used when auditing is disabled
type NoOpLogger struct{}

func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}
