package service

import "time"

type EventType string

const (
	EventDetectionStarted   EventType = "detection.started"
	EventDetectionCompleted EventType = "detection.completed"
	EventDetectionFailed    EventType = "detection.failed"
)

// Event describes a step of a detection request for outer surfaces such as
// websocket clients and MQTT subscribers.
type Event struct {
	Type      EventType
	RequestID string
	Result    *Result
	Err       error
	At        time.Time
}

// EventSink receives events on the detection goroutine and must not block.
type EventSink func(Event)
