package server

import (
	"context"
	"strings"

	"capsort/internal/middleware"
	"capsort/internal/models"
	"capsort/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	localRequestContext = "requestContext"
	localTokenClaims    = "tokenClaims"
	localUserID         = "userID"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func (s *Server) setIdentity(c *fiber.Ctx, rc models.RequestContext, claims *service.TokenClaims) {
	c.Locals(localRequestContext, rc)
	c.Locals(localTokenClaims, claims)
	c.Locals(localUserID, rc.UserID)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, rc.UserID))
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		token, ok := bearerToken(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		rc, claims, err := s.authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return s.respondError(c, err)
		}

		s.setIdentity(c, rc, claims)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// otherwise continues as a guest.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			c.Locals(localRequestContext, models.GuestContext())
			return c.Next()
		}

		rc, claims, err := s.authService.Authenticate(c.UserContext(), token)
		if err != nil {
			c.Locals(localRequestContext, models.GuestContext())
			return c.Next()
		}

		s.setIdentity(c, rc, claims)
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired. The stored role is re-read so a demoted
// admin loses access before their token expires.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc := requestContext(c)
		if !rc.Authenticated() {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		role, err := s.userService.RoleOf(c.UserContext(), rc.UserID)
		if err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Account no longer exists"))
			}
			return s.respondError(c, err)
		}
		if role != models.RoleAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		rc.Role = role
		c.Locals(localRequestContext, rc)
		return c.Next()
	}
}

// requestContext returns the caller set by the auth middleware, or a guest.
func requestContext(c *fiber.Ctx) models.RequestContext {
	if rc, ok := c.Locals(localRequestContext).(models.RequestContext); ok {
		return rc
	}
	return models.GuestContext()
}

func tokenClaims(c *fiber.Ctx) *service.TokenClaims {
	claims, _ := c.Locals(localTokenClaims).(*service.TokenClaims)
	return claims
}
