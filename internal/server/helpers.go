package server

import (
	"capsort/internal/middleware"
	"capsort/internal/models"
	"capsort/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// respondError writes err with the status its code maps to. Store and
// internal failures are logged here, once, with their cause.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"error", err,
			"method", c.Method(),
			"path", c.Path(),
		)
	}
	return models.RespondWithError(c, status, err)
}

// parseID extracts a positive integer route parameter.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	return validation.ParseID(c.Params(param), param)
}

// parseFilter validates the listing query string.
func parseFilter(c *fiber.Ctx) (models.ProjectFilter, error) {
	return validation.ParseProjectFilter(c.Queries())
}

// parseBody decodes a JSON body; malformed input is a validation error.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}
