package service

import (
	"context"
	"time"

	"capsort/internal/cache"
	"capsort/internal/middleware"
	"capsort/internal/models"
	"capsort/internal/observability"
	"capsort/internal/repository"
	"capsort/internal/validation"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// ProjectService holds the admin write path for projects.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	redis       *redis.Client
	now         func() time.Time
}

func NewProjectService(projectRepo repository.ProjectRepository, redisClient *redis.Client) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		redis:       redisClient,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

const duplicateProjectMessage = "An active project with this title and author already exists"

func (s *ProjectService) Create(ctx context.Context, rc models.RequestContext, in validation.ProjectInput) (project *models.Project, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ProjectService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	if err := requireAdmin(rc); err != nil {
		return nil, err
	}
	if err := validation.ValidateProjectInput(&in); err != nil {
		return nil, err
	}

	project = &models.Project{UploadedBy: rc.UserID, Status: models.ProjectStatusActive}
	in.Apply(project)
	if err := s.projectRepo.Create(ctx, project); err != nil {
		if isConflict(err) {
			return nil, models.NewConflictError(duplicateProjectMessage)
		}
		return nil, storeError(err)
	}

	s.invalidateListings(ctx)
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, rc models.RequestContext, id uint, in validation.ProjectInput) (project *models.Project, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ProjectService", "Update", attribute.Int64("project.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireAdmin(rc); err != nil {
		return nil, err
	}
	if err := validation.ValidateProjectInput(&in); err != nil {
		return nil, err
	}

	changes := &models.Project{ID: id}
	in.Apply(changes)
	updated, err := s.projectRepo.Update(ctx, changes)
	if err != nil {
		if isConflict(err) {
			return nil, models.NewConflictError(duplicateProjectMessage)
		}
		return nil, storeError(err)
	}
	if !updated {
		return nil, models.NewNotFoundError("Project", id)
	}

	s.invalidateListings(ctx)
	return s.get(ctx, id)
}

// Delete moves an active project to the trash.
func (s *ProjectService) Delete(ctx context.Context, rc models.RequestContext, id uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ProjectService", "Delete", attribute.Int64("project.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireAdmin(rc); err != nil {
		return err
	}

	deleted, err := s.projectRepo.SoftDelete(ctx, id, s.now())
	if err != nil {
		return storeError(err)
	}
	if !deleted {
		return models.NewNotFoundError("Project", id)
	}

	s.invalidateListings(ctx)
	return nil
}

// Restore brings a trashed project back unless an active duplicate exists.
func (s *ProjectService) Restore(ctx context.Context, rc models.RequestContext, id uint) (project *models.Project, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ProjectService", "Restore", attribute.Int64("project.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireAdmin(rc); err != nil {
		return nil, err
	}

	restored, err := s.projectRepo.Restore(ctx, id)
	if err != nil {
		if isConflict(err) {
			return nil, models.NewConflictError(duplicateProjectMessage)
		}
		return nil, storeError(err)
	}
	if !restored {
		return nil, models.NewNotFoundError("Deleted project", id)
	}

	s.invalidateListings(ctx)
	return s.get(ctx, id)
}

// ListTrash pages through soft-deleted projects, newest first.
func (s *ProjectService) ListTrash(ctx context.Context, rc models.RequestContext, filter models.ProjectFilter) (*models.ProjectPage, error) {
	if err := requireAdmin(rc); err != nil {
		return nil, err
	}
	filter = filter.Normalized()

	projects, total, err := s.projectRepo.List(ctx, filter, models.ProjectStatusDeleted)
	if err != nil {
		return nil, storeError(err)
	}
	views := make([]models.ProjectView, len(projects))
	for i := range projects {
		views[i] = models.ProjectView{Project: projects[i], CanEdit: true}
	}
	return newPage(views, filter, total), nil
}

func (s *ProjectService) get(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Project", id)
		}
		return nil, storeError(err)
	}
	return project, nil
}

// invalidateListings retires cached guest pages. A failure only delays
// visibility until the cached pages expire.
func (s *ProjectService) invalidateListings(ctx context.Context) {
	if err := cache.BumpListingVersion(ctx, s.redis); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to bump listing cache version", "error", err)
	}
}
