package handlers

import (
	"errors"
	"log"

	"supertavern-core/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a classified application error to its HTTP status.
// Unclassified errors (and IO failures) are logged and reported as the
// generic fallback message so storage details never leak to callers.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperrors.KindInvalidArgument:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": appErr.Message,
			})
		case apperrors.KindNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": appErr.Message,
			})
		case apperrors.KindConflict:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": appErr.Message,
			})
		}
	}

	log.Printf("❌ %s: %v", fallback, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}
