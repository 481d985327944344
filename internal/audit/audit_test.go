package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Log(t *testing.T) {
	tests := []struct {
		name          string
		event         Event
		wantEventType string
		wantProvider  string
		wantHasError  bool
		wantHasFaceID bool
	}{
		{
			name: "detection completed",
			event: Event{
				RequestID: "req-1",
				EventType: EventDetectionCompleted,
				Provider:  "azure",
				FaceCount: 2,
				Success:   true,
			},
			wantEventType: string(EventDetectionCompleted),
			wantProvider:  "azure",
		},
		{
			name: "detection failed",
			event: Event{
				RequestID: "req-2",
				EventType: EventDetectionFailed,
				Provider:  "rekognition",
				Success:   false,
				Error:     "service unavailable",
			},
			wantEventType: string(EventDetectionFailed),
			wantProvider:  "rekognition",
			wantHasError:  true,
		},
		{
			name: "face tapped with face ID",
			event: Event{
				EventType: EventFaceTapped,
				FaceID:    "face-123",
				Provider:  "azure",
				Success:   true,
				IPAddress: "192.168.1.1",
				UserAgent: "Mozilla/5.0",
			},
			wantEventType: string(EventFaceTapped),
			wantProvider:  "azure",
			wantHasFaceID: true,
		},
		{
			name: "camera captured",
			event: Event{
				EventType: EventCameraCaptured,
				Provider:  "virtual",
				Success:   true,
				Metadata:  map[string]string{"camera_id": "0"},
			},
			wantEventType: string(EventCameraCaptured),
			wantProvider:  "virtual",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			auditLogger := NewSlogLogger(logger)
			err := auditLogger.Log(context.Background(), tt.event)

			require.NoError(t, err)

			output := buf.String()
			assert.Contains(t, output, tt.wantEventType)
			assert.Contains(t, output, tt.wantProvider)
			assert.Contains(t, output, "audit_event")
			assert.Contains(t, output, `"component":"audit"`)

			if tt.wantHasError {
				assert.Contains(t, output, tt.event.Error)
			}

			if tt.wantHasFaceID {
				assert.Contains(t, output, tt.event.FaceID)
			}
		})
	}
}

func TestSlogLogger_Log_GeneratesIDAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	auditLogger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := auditLogger.Log(context.Background(), Event{
		EventType: EventDetectionRequested,
		Provider:  "mock",
		Success:   true,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &logEntry))

	eventID, ok := logEntry["event_id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(eventID)
	assert.NoError(t, err)

	var data Event
	require.NoError(t, json.Unmarshal([]byte(logEntry["event_data"].(string)), &data))
	assert.False(t, data.Timestamp.IsZero())
}

func TestSlogLogger_Log_UsesProvidedID(t *testing.T) {
	var buf bytes.Buffer
	auditLogger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	expectedID := uuid.New()

	err := auditLogger.Log(context.Background(), Event{
		ID:        expectedID,
		Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		EventType: EventCameraStarted,
		Provider:  "virtual",
		Success:   true,
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), expectedID.String())
	assert.Contains(t, buf.String(), "2024-01-15T10:30:00Z")
}

func TestNoOpLogger_Log(t *testing.T) {
	logger := &NoOpLogger{}

	for i := 0; i < 10; i++ {
		assert.NoError(t, logger.Log(context.Background(), Event{EventType: EventDetectionRequested}))
	}
}

func TestLoggerInterface_Compliance(t *testing.T) {
	var _ Logger = (*SlogLogger)(nil)
	var _ Logger = (*NoOpLogger)(nil)
}

func TestEvent_JSONOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Event{
		EventType: EventDetectionCompleted,
		Provider:  "azure",
		Success:   true,
	})
	require.NoError(t, err)

	jsonStr := string(data)
	assert.NotContains(t, jsonStr, "request_id")
	assert.NotContains(t, jsonStr, "face_id")
	assert.NotContains(t, jsonStr, "face_count")
	assert.NotContains(t, jsonStr, `"error"`)
	assert.NotContains(t, jsonStr, "ip_address")
}
