package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// ReadyCheck reports whether a dependency can serve traffic.
type ReadyCheck func() error

type HealthHandler struct {
	checks map[string]ReadyCheck
}

func NewHealthHandler(checks map[string]ReadyCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// Ready runs every registered check and answers 503 if any fails.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := HealthResponse{Status: "ready"}
	status := fiber.StatusOK

	for name, check := range h.checks {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(h.checks))
		}
		if err := check(); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "not_ready"
			status = fiber.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	return c.Status(status).JSON(resp)
}
