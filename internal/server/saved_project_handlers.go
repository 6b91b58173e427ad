package server

import (
	"capsort/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetSavedProjects handles GET /api/saved-projects
// @Summary List saved projects
// @Tags saved-projects
// @Produce json
// @Param page query int false "Page, 1-based"
// @Param limit query int false "Page size, 1-100"
// @Success 200 {object} models.ProjectPage
// @Failure 401 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /saved-projects [get]
func (s *Server) GetSavedProjects(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return s.respondError(c, err)
	}

	page, err := s.listingService.ListSaved(c.UserContext(), requestContext(c), filter)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// SaveProject handles POST /api/saved-projects
// @Summary Save project
// @Tags saved-projects
// @Accept json
// @Produce json
// @Param request body validation.SaveProjectInput true "Project to save"
// @Success 201 {object} object{message=string,saved=models.SavedProject}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /saved-projects [post]
func (s *Server) SaveProject(c *fiber.Ctx) error {
	var in validation.SaveProjectInput
	if err := parseBody(c, &in); err != nil {
		return s.respondError(c, err)
	}
	projectID, err := validation.ValidateSaveProjectInput(&in)
	if err != nil {
		return s.respondError(c, err)
	}

	saved, err := s.savedService.Save(c.UserContext(), requestContext(c), projectID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Project saved",
		"saved":   saved,
	})
}

// UnsaveProject handles DELETE /api/saved-projects/:projectId
// @Summary Unsave project
// @Tags saved-projects
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /saved-projects/{projectId} [delete]
func (s *Server) UnsaveProject(c *fiber.Ctx) error {
	projectID, err := parseID(c, "projectId")
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.savedService.Unsave(c.UserContext(), requestContext(c), projectID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Project removed from saved"})
}
