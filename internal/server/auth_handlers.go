package server

import (
	"capsort/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup
// @Summary Sign up
// @Description Register a student account and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validation.SignupInput true "Signup request"
// @Success 201 {object} service.AuthResult
// @Failure 422 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var in validation.SignupInput
	if err := parseBody(c, &in); err != nil {
		return s.respondError(c, err)
	}

	res, err := s.authService.Signup(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Authenticate and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validation.LoginInput true "Login credentials"
// @Success 200 {object} service.AuthResult
// @Failure 422 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var in validation.LoginInput
	if err := parseBody(c, &in); err != nil {
		return s.respondError(c, err)
	}

	res, err := s.authService.Login(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(res)
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revoke the current token
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), tokenClaims(c)); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
