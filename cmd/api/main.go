package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/facemood/internal/api"
	"github.com/saturnino-fabrica-de-software/facemood/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/facemood/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facemood/internal/audit"
	"github.com/saturnino-fabrica-de-software/facemood/internal/camera"
	"github.com/saturnino-fabrica-de-software/facemood/internal/camera/virtual"
	"github.com/saturnino-fabrica-de-software/facemood/internal/config"
	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemood/internal/face"
	"github.com/saturnino-fabrica-de-software/facemood/internal/notify"
	"github.com/saturnino-fabrica-de-software/facemood/internal/service"
	"github.com/saturnino-fabrica-de-software/facemood/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment, cfg.LogFile)
	slog.SetDefault(logger)

	logger.Info("starting facemood API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("provider", cfg.FaceProvider),
	)

	if cfg.APIKey == "" {
		logger.Warn("API_KEY not set, /v1 routes are unauthenticated")
	} else if !domain.IsValidFormat(cfg.APIKey) {
		logger.Warn("API_KEY does not look like a generated key, consider cmd/genkey")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditLogger := audit.NewSlogLogger(logger)

	analyzer, err := face.NewFaceAnalyzer(ctx, cfg, auditLogger)
	if err != nil {
		return fmt.Errorf("failed to create face analyzer: %w", err)
	}

	hub := ws.NewHub()
	detection := service.NewDetectionService(analyzer, logger).
		WithAuditLogger(auditLogger, cfg.FaceProvider).
		WithTimeout(cfg.DetectionTimeout).
		WithEventSink(handler.EventSink(hub))

	deps := &api.Dependencies{
		Detection:   detection,
		Hub:         hub,
		ReadyChecks: map[string]handler.ReadyCheck{},
	}

	// MQTT publisher
	var publisher *notify.Publisher
	if cfg.MQTTEnabled() {
		publisher = notify.NewPublisher(notify.Config{
			Broker:   cfg.MQTTBroker,
			Topic:    cfg.MQTTTopic,
			ClientID: cfg.MQTTClientID,
		}, logger)

		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := publisher.Connect(connectCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to mqtt broker: %w", err)
		}

		detection.WithEventSink(publisher.Sink())
		deps.ReadyChecks["mqtt"] = publisher.Ready
		go publisher.Run(ctx)
	}

	// Live capture source
	var live *camera.LiveSource
	if cfg.CameraEnabled() {
		live, err = newLiveSource(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create camera: %w", err)
		}
		live.WithAuditLogger(auditLogger)
		live.SetListener(handler.CaptureListener(detection, hub, logger))
		deps.Camera = live
	}

	// Setup router
	router := api.NewRouter(logger, deps, api.Options{
		APIKey: cfg.APIKey,
		RateLimit: middleware.RateLimiterConfig{
			Max:    cfg.RateLimitMax,
			Window: cfg.RateLimitWindow,
		},
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if live != nil {
		if err := live.Stop(); err != nil {
			logger.Error("camera stop error", slog.Any("error", err))
		}
	}
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}
	if err := detection.Shutdown(shutdownCtx); err != nil {
		logger.Error("detection shutdown error", slog.Any("error", err))
	}
	if publisher != nil {
		publisher.Close()
	}

	logger.Info("server stopped")

	return nil
}

// newLiveSource builds a virtual camera over CAMERA_FRAMES_DIR. Without a
// loadable cascade the camera previews but never auto-captures.
func newLiveSource(cfg *config.Config, logger *slog.Logger) (*camera.LiveSource, error) {
	facing, err := camera.ParseFacing(cfg.CameraFacing)
	if err != nil {
		return nil, err
	}

	var counter virtual.FaceCounter
	if detector, err := virtual.LoadPigoDetector(cfg.CameraCascade); err != nil {
		logger.Warn("face cascade unavailable, auto-capture disabled",
			slog.String("cascade", cfg.CameraCascade),
			slog.Any("error", err),
		)
	} else {
		counter = detector
	}

	device, err := virtual.New(virtual.Config{
		FramesDir: cfg.CameraFramesDir,
		Facing:    facing,
		Interval:  cfg.CameraFrameInterval,
	}, counter, logger)
	if err != nil {
		return nil, err
	}

	return camera.NewLiveSource(device, camera.Options{
		Facing:   facing,
		Rotation: cfg.CameraRotation,
	}, logger), nil
}
