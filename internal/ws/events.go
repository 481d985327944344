package ws

import (
	"strings"
	"time"
)

type EventType string

const (
	EventDetectionStarted   EventType = "detection.started"
	EventDetectionCompleted EventType = "detection.completed"
	EventDetectionFailed    EventType = "detection.failed"
	EventCameraCaptured     EventType = "camera.captured"
)

type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// parseFilter reads a comma separated list of event types. An empty list
// subscribes to everything.
func parseFilter(raw string) map[EventType]bool {
	filter := make(map[EventType]bool)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			filter[EventType(p)] = true
		}
	}
	return filter
}
