// Package notify publishes detection results to an MQTT broker.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemood/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrNotConnected = errors.New("mqtt client not connected")

type Config struct {
	Broker   string
	Topic    string
	ClientID string
}

// Message is the payload written for every completed detection.
type Message struct {
	RequestID   string        `json:"request_id"`
	Faces       []FacePayload `json:"faces"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	DurationMS  int64         `json:"duration_ms"`
	CompletedAt time.Time     `json:"completed_at"`
}

type FacePayload struct {
	ID        string               `json:"id"`
	Rectangle domain.Rectangle     `json:"rectangle"`
	Emotion   domain.EmotionScores `json:"emotion"`
	Dominant  string               `json:"dominant"`
}

const queueSize = 64

type Publisher struct {
	client mqtt.Client
	topic  string
	queue  chan service.Result
	logger *slog.Logger
}

func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "facemood-" + uuid.New().String()
	}

	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(5 * time.Second)
	opts.SetConnectTimeout(30 * time.Second)
	opts.SetAutoReconnect(true)

	log := logger.With("component", "mqtt")
	opts.OnConnect = func(mqtt.Client) {
		log.Info("connected to broker", "broker", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn("broker connection lost", "error", err)
	}

	return newPublisher(mqtt.NewClient(opts), cfg.Topic, logger)
}

func newPublisher(client mqtt.Client, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		topic:  topic,
		queue:  make(chan service.Result, queueSize),
		logger: logger.With("component", "mqtt"),
	}
}

func (p *Publisher) Connect(ctx context.Context) error {
	token := p.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("mqtt connect: %w", ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Ready reports whether the broker connection is up.
func (p *Publisher) Ready() error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// Publish sends one completed detection at QoS 0.
func (p *Publisher) Publish(result service.Result) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(NewMessage(result))
	if err != nil {
		return fmt.Errorf("marshal detection: %w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

// Sink adapts the publisher to a service event sink. Completed detections
// are queued for Run; when the queue is full the result is dropped.
func (p *Publisher) Sink() service.EventSink {
	return func(e service.Event) {
		if e.Type != service.EventDetectionCompleted || e.Result == nil {
			return
		}
		select {
		case p.queue <- *e.Result:
		default:
			p.logger.Warn("publish queue full, dropping detection", "request_id", e.RequestID)
		}
	}
}

// Run publishes queued detections until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case result := <-p.queue:
			if err := p.Publish(result); err != nil {
				p.logger.Warn("failed to publish detection", "error", err)
			}
		}
	}
}

func NewMessage(result service.Result) Message {
	msg := Message{
		DurationMS: result.Duration.Milliseconds(),
		Faces:      []FacePayload{},
	}
	if result.Set == nil {
		return msg
	}

	msg.RequestID = result.Set.RequestID
	msg.Width = result.Set.Width
	msg.Height = result.Set.Height
	msg.CompletedAt = result.Set.CompletedAt
	for _, f := range result.Set.Records() {
		msg.Faces = append(msg.Faces, FacePayload{
			ID:        f.ID,
			Rectangle: f.Rectangle,
			Emotion:   f.Emotion,
			Dominant:  f.Emotion.Dominant(),
		})
	}
	return msg
}
