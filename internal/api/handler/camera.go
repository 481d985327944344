package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facemood/internal/camera"
	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
)

// CameraSource is the subset of camera.LiveSource the handler drives.
type CameraSource interface {
	Status() camera.Status
	Start() error
	Stop() error
}

type CameraHandler struct {
	source CameraSource
	logger *slog.Logger
}

// NewCameraHandler accepts a nil source; every route then answers 503.
func NewCameraHandler(source CameraSource, logger *slog.Logger) *CameraHandler {
	return &CameraHandler{
		source: source,
		logger: logger.With("component", "camera_handler"),
	}
}

// Status GET /v1/camera
func (h *CameraHandler) Status(c *fiber.Ctx) error {
	if h.source == nil {
		return domain.ErrCameraUnavailable
	}
	return c.JSON(h.source.Status())
}

// Start POST /v1/camera/start - open the preview and arm auto-capture
func (h *CameraHandler) Start(c *fiber.Ctx) error {
	if h.source == nil {
		return domain.ErrCameraUnavailable
	}

	if err := h.source.Start(); err != nil {
		h.logger.Warn("camera start failed", "error", err)
		return cameraError(err)
	}

	return c.JSON(h.source.Status())
}

// Stop POST /v1/camera/stop
func (h *CameraHandler) Stop(c *fiber.Ctx) error {
	if h.source == nil {
		return domain.ErrCameraUnavailable
	}

	if err := h.source.Stop(); err != nil {
		h.logger.Warn("camera stop failed", "error", err)
		return cameraError(err)
	}

	return c.JSON(h.source.Status())
}

func cameraError(err error) error {
	switch {
	case errors.Is(err, camera.ErrNoCamera), errors.Is(err, camera.ErrPermissionDenied):
		return domain.ErrCameraUnavailable.WithError(err)
	default:
		return domain.ErrInternal.WithError(err)
	}
}
