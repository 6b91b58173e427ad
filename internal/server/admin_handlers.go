package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetTrash handles GET /api/admin/projects/trash
// @Summary List trashed projects
// @Tags admin
// @Produce json
// @Param page query int false "Page, 1-based"
// @Param limit query int false "Page size, 1-100"
// @Success 200 {object} models.ProjectPage
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/projects/trash [get]
func (s *Server) GetTrash(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return s.respondError(c, err)
	}

	page, err := s.projectService.ListTrash(c.UserContext(), requestContext(c), filter)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// RestoreProject handles POST /api/admin/projects/:id/restore
// @Summary Restore project
// @Description Brings a trashed project back unless an active duplicate exists
// @Tags admin
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} object{project=models.Project}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/projects/{id}/restore [post]
func (s *Server) RestoreProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	project, err := s.projectService.Restore(c.UserContext(), requestContext(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"project": project})
}

// GetAnalytics handles GET /api/admin/analytics
// @Summary Analytics dashboard
// @Tags admin
// @Produce json
// @Success 200 {object} models.Analytics
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/analytics [get]
func (s *Server) GetAnalytics(c *fiber.Ctx) error {
	stats, err := s.analyticsService.Dashboard(c.UserContext(), requestContext(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(stats)
}

// GetFeatureFlags handles GET /api/admin/feature-flags
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	rc := requestContext(c)
	return c.JSON(fiber.Map{
		"flags":     s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(rc.UserID),
	})
}
