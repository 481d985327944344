package handler

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemood/internal/imaging"
)

// readImage accepts either a multipart "image" field or a raw image body and
// checks the sniffed type.
func readImage(c *fiber.Ctx) ([]byte, error) {
	var data []byte

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		file, err := c.FormFile("image")
		if err != nil {
			return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("image field: %w", err))
		}

		f, err := file.Open()
		if err != nil {
			return nil, domain.ErrInvalidImage.WithError(err)
		}
		defer func() {
			_ = f.Close()
		}()

		data, err = io.ReadAll(f)
		if err != nil {
			return nil, domain.ErrInvalidImage.WithError(err)
		}
	} else {
		// The request body buffer is reused by fasthttp once the handler returns.
		data = append([]byte(nil), c.Body()...)
	}

	if len(data) == 0 {
		return nil, domain.ErrInvalidImage.WithError(errors.New("empty image"))
	}

	if mime := imaging.DetectMIME(data); !slices.Contains(imaging.AcceptedTypes, mime) {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("%w: %s", imaging.ErrUnsupportedFormat, mime))
	}

	return data, nil
}
