package server

import (
	"capsort/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetProjects handles GET /api/projects
// @Summary List projects
// @Description Paginated active projects, newest first. Signed-in callers get isSaved flags.
// @Tags projects
// @Produce json
// @Param page query int false "Page, 1-based"
// @Param limit query int false "Page size, 1-100"
// @Param field query string false "Field, or all"
// @Param year query int false "Exact year"
// @Param yearFrom query int false "Earliest year"
// @Param yearTo query int false "Latest year"
// @Param search query string false "Title or author substring"
// @Success 200 {object} models.ProjectPage
// @Failure 422 {object} models.ErrorResponse
// @Router /projects [get]
func (s *Server) GetProjects(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return s.respondError(c, err)
	}

	page, err := s.listingService.ListProjects(c.UserContext(), requestContext(c), filter)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// GetProject handles GET /api/projects/:id
// @Summary Get project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} object{project=models.ProjectView}
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /projects/{id} [get]
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	project, err := s.listingService.GetProject(c.UserContext(), requestContext(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"project": project})
}

// CreateProject handles POST /api/projects
// @Summary Create project
// @Description Admin only
// @Tags projects
// @Accept json
// @Produce json
// @Param request body validation.ProjectInput true "Project"
// @Success 201 {object} object{project=models.Project}
// @Failure 422 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /projects [post]
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var in validation.ProjectInput
	if err := parseBody(c, &in); err != nil {
		return s.respondError(c, err)
	}

	project, err := s.projectService.Create(c.UserContext(), requestContext(c), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"project": project})
}

// UpdateProject handles PUT /api/projects/:id
// @Summary Update project
// @Description Admin only
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body validation.ProjectInput true "Project"
// @Success 200 {object} object{project=models.Project}
// @Failure 422 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /projects/{id} [put]
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	var in validation.ProjectInput
	if err := parseBody(c, &in); err != nil {
		return s.respondError(c, err)
	}

	project, err := s.projectService.Update(c.UserContext(), requestContext(c), id, in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"project": project})
}

// DeleteProject handles DELETE /api/projects/:id (move to trash)
// @Summary Move project to trash
// @Description Admin only
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /projects/{id} [delete]
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.projectService.Delete(c.UserContext(), requestContext(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Project moved to trash"})
}
