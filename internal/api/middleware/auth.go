package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
)

// HeaderAPIKey carries the shared API key. A Bearer token is accepted too.
const HeaderAPIKey = "X-API-Key"

// APIKey rejects requests that do not present the configured key.
func APIKey(key string) fiber.Handler {
	expected := []byte(key)

	return func(c *fiber.Ctx) error {
		presented := c.Get(HeaderAPIKey)
		if presented == "" {
			presented = extractBearerToken(c)
		}
		if presented == "" {
			return domain.ErrUnauthorized
		}

		if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			return domain.ErrUnauthorized
		}

		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
