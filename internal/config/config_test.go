package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr error
		check   func(*testing.T, *Config)
	}{
		{
			name: "loads with all vars",
			envVars: map[string]string{
				"PORT":                  "8080",
				"ENV":                   "production",
				"FACE_PROVIDER":         "azure",
				"AZURE_FACE_ENDPOINT":   "https://westus.api.cognitive.microsoft.com",
				"AZURE_FACE_KEY":        "key123",
				"AZURE_FACE_TIMEOUT":    "5s",
				"AZURE_FACE_RETRIES":    "2",
				"DETECTION_TIMEOUT":     "90s",
				"CAMERA_FRAMES_DIR":     "/tmp/frames",
				"CAMERA_ROTATION":       "90",
				"CAMERA_FRAME_INTERVAL": "250ms",
				"MQTT_BROKER":           "tcp://localhost:1883",
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 8080, c.Port)
				assert.Equal(t, "production", c.Environment)
				assert.Equal(t, "https://westus.api.cognitive.microsoft.com", c.AzureFaceEndpoint)
				assert.Equal(t, "key123", c.AzureFaceKey)
				assert.Equal(t, 5*time.Second, c.AzureFaceTimeout)
				assert.Equal(t, 2, c.AzureFaceRetries)
				assert.Equal(t, 90*time.Second, c.DetectionTimeout)
				assert.Equal(t, 90, c.CameraRotation)
				assert.Equal(t, 250*time.Millisecond, c.CameraFrameInterval)
				assert.True(t, c.CameraEnabled())
				assert.True(t, c.MQTTEnabled())
			},
		},
		{
			name: "uses defaults when optional vars missing",
			envVars: map[string]string{
				"AZURE_FACE_KEY": "key123",
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 3000, c.Port)
				assert.Equal(t, "development", c.Environment)
				assert.Equal(t, "azure", c.FaceProvider)
				assert.Equal(t, "https://eastasia.api.cognitive.microsoft.com", c.AzureFaceEndpoint)
				assert.Equal(t, 30*time.Second, c.AzureFaceTimeout)
				assert.Equal(t, 0, c.AzureFaceRetries)
				assert.Equal(t, time.Minute, c.DetectionTimeout)
				assert.Equal(t, "front", c.CameraFacing)
				assert.Equal(t, 270, c.CameraRotation)
				assert.Equal(t, "facemood/detections", c.MQTTTopic)
				assert.False(t, c.CameraEnabled())
				assert.False(t, c.MQTTEnabled())
			},
		},
		{
			name:    "fails when azure key missing",
			envVars: map[string]string{},
			wantErr: ErrMissingAzureCredentials,
		},
		{
			name: "mock provider needs no credentials",
			envVars: map[string]string{
				"FACE_PROVIDER": "mock",
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "mock", c.FaceProvider)
			},
		},
		{
			name: "fails on unknown provider",
			envVars: map[string]string{
				"FACE_PROVIDER": "deepface",
			},
			wantErr: ErrUnknownProvider,
		},
		{
			name: "fails on invalid rotation",
			envVars: map[string]string{
				"FACE_PROVIDER":   "mock",
				"CAMERA_ROTATION": "45",
			},
			wantErr: ErrInvalidRotation,
		},
		{
			name: "fails on negative detection timeout",
			envVars: map[string]string{
				"FACE_PROVIDER":     "mock",
				"DETECTION_TIMEOUT": "-1s",
			},
			wantErr: ErrNegativeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_RejectsMalformedDuration(t *testing.T) {
	os.Clearenv()
	t.Setenv("FACE_PROVIDER", "mock")
	t.Setenv("AZURE_FACE_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"development", "development", true},
		{"production", "production", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			assert.Equal(t, tt.want, c.IsDevelopment())
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"production", "production", true},
		{"development", "development", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			assert.Equal(t, tt.want, c.IsProduction())
		})
	}
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer

	NewLoggerTo("production", &buf).Info("hello", "component", "test")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"component":"test"`)

	buf.Reset()
	NewLoggerTo("development", &buf).Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNewLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facemood.log")

	NewLogger("production", path).Info("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
