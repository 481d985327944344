package azure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

const (
	detectPath = "/face/v1.0/detect"

	// subscriptionKeyHeader carries the Cognitive Services key.
	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

	// MaxImageBytes is the detect endpoint's upload ceiling.
	MaxImageBytes = 4 * 1024 * 1024
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds the configuration for the Face API client
type Config struct {
	Endpoint   string
	Key        string
	Timeout    time.Duration
	RetryCount int
}

// DefaultConfig returns a Config pointing at the East Asia region with no retries.
func DefaultConfig() Config {
	return Config{
		Endpoint:   "https://eastasia.api.cognitive.microsoft.com",
		Timeout:    30 * time.Second,
		RetryCount: 0,
	}
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("azure face returned status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("azure face returned status %d: %s", e.StatusCode, e.Message)
}

// Client is the HTTP client for the Face API detect endpoint
type Client struct {
	httpClient *http.Client
	config     Config
	validate   *validator.Validate
}

func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:   config,
		validate: validator.New(),
	}
}

// Detect posts the raw image to the detect endpoint, asking for face IDs and
// emotion attributes only. Any face with a missing field fails the whole call.
func (c *Client) Detect(ctx context.Context, image []byte) ([]DetectedFace, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if len(image) > MaxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(image))
	}

	var faces []DetectedFace
	if err := c.doRequestWithRetry(ctx, image, &faces); err != nil {
		return nil, err
	}

	for i := range faces {
		if err := c.validate.Struct(&faces[i]); err != nil {
			return nil, fmt.Errorf("%w: face %d: %v", ErrInvalidResponse, i, err)
		}
	}

	return faces, nil
}

func (c *Client) detectURL() string {
	q := url.Values{}
	q.Set("returnFaceId", "true")
	q.Set("returnFaceLandmarks", "false")
	q.Set("returnFaceAttributes", "emotion")
	return strings.TrimRight(c.config.Endpoint, "/") + detectPath + "?" + q.Encode()
}

// maxBackoff is the maximum backoff duration for retries
const maxBackoff = 30 * time.Second

// calculateBackoff returns 1s, 2s, 4s, 8s, ... capped at maxBackoff
func calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	seconds := 1
	for i := 1; i < attempt && i < 6; i++ {
		seconds *= 2
	}
	d := time.Duration(seconds) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (c *Client) doRequestWithRetry(ctx context.Context, body []byte, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		lastErr = c.doRequest(ctx, body, result)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Only server errors and transport failures are worth another attempt
		if !isRetryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %v", ErrServiceUnavailable, lastErr)
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrUnauthorized) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return true
}

func (c *Client) doRequest(ctx context.Context, body []byte, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.detectURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(subscriptionKeyHeader, c.config.Key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		se := &StatusError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var envelope ErrorResponse
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error.Message != "" {
			se.Code = envelope.Error.Code
			se.Message = envelope.Error.Message
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %v", ErrUnauthorized, se)
		}
		return se
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}
