package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
)

// ErrorHandler renders errors as {"error":{"code","message"}}.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			// Body limit rejections are reported like any other oversize image.
			if fiberErr.Code == fiber.StatusRequestEntityTooLarge {
				return writeAppError(c, domain.ErrImageTooLarge)
			}
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "HTTP_ERROR",
					"message": fiberErr.Message,
				},
			})
		}

		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			if appErr.StatusCode >= 500 {
				logger.Error("internal error",
					slog.String("request_id", RequestID(c)),
					slog.String("code", appErr.Code),
					slog.String("message", appErr.Message),
					slog.Any("error", appErr.Err),
				)
			}
			return writeAppError(c, appErr)
		}

		logger.Error("unhandled error",
			slog.String("request_id", RequestID(c)),
			slog.Any("error", err),
			slog.String("path", c.Path()),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_ERROR",
				"message": "An unexpected error occurred",
			},
		})
	}
}

func writeAppError(c *fiber.Ctx, appErr *domain.AppError) error {
	return c.Status(appErr.StatusCode).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
