package server

import "github.com/gofiber/fiber/v2"

// GetMyProfile handles GET /api/users/me
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), requestContext(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}
