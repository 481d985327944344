package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingAzureCredentials = errors.New("azure provider requires AZURE_FACE_KEY")
	ErrUnknownProvider         = errors.New("unknown face provider")
	ErrInvalidRotation         = errors.New("camera rotation must be 0, 90, 180 or 270")
	ErrNegativeTimeout         = errors.New("detection timeout must not be negative")
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	LogFile     string `envconfig:"LOG_FILE"`

	// Provider
	FaceProvider      string        `envconfig:"FACE_PROVIDER" default:"azure"`
	AzureFaceEndpoint string        `envconfig:"AZURE_FACE_ENDPOINT" default:"https://eastasia.api.cognitive.microsoft.com"`
	AzureFaceKey      string        `envconfig:"AZURE_FACE_KEY"`
	AzureFaceTimeout  time.Duration `envconfig:"AZURE_FACE_TIMEOUT" default:"30s"`
	AzureFaceRetries  int           `envconfig:"AZURE_FACE_RETRIES" default:"0"`
	AWSRegion         string        `envconfig:"AWS_REGION" default:"us-east-1"`

	// Detection bounds a whole request, retries included. Zero disables it.
	DetectionTimeout time.Duration `envconfig:"DETECTION_TIMEOUT" default:"1m"`

	// Security
	APIKey          string        `envconfig:"API_KEY"`
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"60"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// Camera
	CameraFramesDir     string        `envconfig:"CAMERA_FRAMES_DIR"`
	CameraFacing        string        `envconfig:"CAMERA_FACING" default:"front"`
	CameraRotation      int           `envconfig:"CAMERA_ROTATION" default:"270"`
	CameraFrameInterval time.Duration `envconfig:"CAMERA_FRAME_INTERVAL" default:"500ms"`
	CameraCascade       string        `envconfig:"CAMERA_CASCADE" default:"cascade/facefinder"`

	// MQTT
	MQTTBroker   string `envconfig:"MQTT_BROKER"`
	MQTTTopic    string `envconfig:"MQTT_TOPIC" default:"facemood/detections"`
	MQTTClientID string `envconfig:"MQTT_CLIENT_ID"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that envconfig tags cannot express.
func (c *Config) Validate() error {
	switch c.FaceProvider {
	case "azure":
		if c.AzureFaceKey == "" {
			return ErrMissingAzureCredentials
		}
	case "rekognition", "mock":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.FaceProvider)
	}

	if c.DetectionTimeout < 0 {
		return ErrNegativeTimeout
	}

	switch c.CameraRotation {
	case 0, 90, 180, 270:
	default:
		return ErrInvalidRotation
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) CameraEnabled() bool {
	return c.CameraFramesDir != ""
}

func (c *Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}
