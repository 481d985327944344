package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facemood/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemood/internal/imaging"
	"github.com/saturnino-fabrica-de-software/facemood/internal/presenter"
	"github.com/saturnino-fabrica-de-software/facemood/internal/service"
)

const framedJPEGQuality = 90

// DetectionService is the subset of service.DetectionService the handler uses.
type DetectionService interface {
	Detect(ctx context.Context, data []byte) *service.Pending
	Snapshot() *domain.FaceSet
	Tap(view presenter.Transform, x, y float64) (*presenter.TapResult, error)
}

// DetectionHandler serves detections, the current face collection and taps.
type DetectionHandler struct {
	service  DetectionService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewDetectionHandler(svc DetectionService, logger *slog.Logger) *DetectionHandler {
	return &DetectionHandler{
		service:  svc,
		validate: validator.New(),
		logger:   logger.With("component", "detection_handler"),
	}
}

// FaceResponse is one analyzed face.
type FaceResponse struct {
	ID        string               `json:"id"`
	Rectangle domain.Rectangle     `json:"rectangle"`
	Emotion   domain.EmotionScores `json:"emotion"`
	Dominant  string               `json:"dominant"`
}

// DetectionResponse describes a face collection.
type DetectionResponse struct {
	ID          string         `json:"id"`
	Faces       []FaceResponse `json:"faces"`
	Width       int            `json:"width,omitempty"`
	Height      int            `json:"height,omitempty"`
	DurationMs  int64          `json:"duration_ms,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// AcceptedResponse is returned when the caller does not wait.
type AcceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TapRequest is a tap in view coordinates plus the view transform. A missing
// transform means the view shows the source image unscaled.
type TapRequest struct {
	X         *float64             `json:"x" validate:"required"`
	Y         *float64             `json:"y" validate:"required"`
	Transform *presenter.Transform `json:"transform"`
}

// Create POST /v1/detections - analyze an image
func (h *DetectionHandler) Create(c *fiber.Ctx) error {
	data, err := readImage(c)
	if err != nil {
		return err
	}

	// Detached so a fire-and-forget request outlives this handler.
	pending := h.service.Detect(context.Background(), data)

	if !c.QueryBool("wait", true) {
		return c.Status(fiber.StatusAccepted).JSON(AcceptedResponse{
			ID:     pending.ID(),
			Status: "pending",
		})
	}

	result, err := pending.Wait(c.UserContext())
	if err != nil {
		h.logger.Warn("detection failed",
			"request_id", middleware.RequestID(c),
			"detection_id", pending.ID(),
			"error", err,
		)
		return err
	}

	resp := toDetectionResponse(result.Set)
	resp.DurationMs = result.Duration.Milliseconds()
	return c.JSON(resp)
}

// Faces GET /v1/faces - current collection, empty when none is published
func (h *DetectionHandler) Faces(c *fiber.Ctx) error {
	return c.JSON(toDetectionResponse(h.service.Snapshot()))
}

// Framed GET /v1/faces/framed - the analyzed image with face outlines
func (h *DetectionHandler) Framed(c *fiber.Ctx) error {
	set := h.service.Snapshot()
	if set == nil || set.Framed == nil {
		return domain.ErrNoFacesYet
	}

	data, err := imaging.EncodeJPEG(set.Framed, framedJPEGQuality)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set("X-Detection-ID", set.RequestID)
	return c.Send(data)
}

// Tap POST /v1/faces/tap - emotion table of the face under a point
func (h *DetectionHandler) Tap(c *fiber.Ctx) error {
	var req TapRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	view := presenter.Identity
	if req.Transform != nil {
		view = *req.Transform
	}

	result, err := h.service.Tap(view, *req.X, *req.Y)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func toDetectionResponse(set *domain.FaceSet) DetectionResponse {
	resp := DetectionResponse{Faces: []FaceResponse{}}
	if set == nil {
		return resp
	}

	resp.ID = set.RequestID
	resp.Width = set.Width
	resp.Height = set.Height
	completed := set.CompletedAt
	resp.CompletedAt = &completed
	for _, f := range set.Records() {
		resp.Faces = append(resp.Faces, FaceResponse{
			ID:        f.ID,
			Rectangle: f.Rectangle,
			Emotion:   f.Emotion,
			Dominant:  f.Emotion.Dominant(),
		})
	}
	return resp
}
