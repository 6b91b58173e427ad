package service

import (
	"context"
	"time"

	"capsort/internal/models"
	"capsort/internal/observability"
	"capsort/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type SavedProjectService struct {
	savedRepo repository.SavedProjectRepository
	now       func() time.Time
}

func NewSavedProjectService(savedRepo repository.SavedProjectRepository) *SavedProjectService {
	return &SavedProjectService{
		savedRepo: savedRepo,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Save bookmarks an active project for the caller. The insert is a single
// conditional statement; when it inserts nothing the project is re-read on the
// primary to tell a missing project from an existing bookmark.
func (s *SavedProjectService) Save(ctx context.Context, rc models.RequestContext, projectID uint) (saved *models.SavedProject, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SavedProjectService", "Save",
		attribute.Int64("user.id", int64(rc.UserID)),
		attribute.Int64("project.id", int64(projectID)),
	)
	defer func() {
		observability.SavedProjectOps.WithLabelValues("save", outcomeOf(err)).Inc()
		observability.EndSpan(span, err)
	}()

	if err := requireUser(rc); err != nil {
		return nil, err
	}
	if projectID == 0 {
		return nil, models.NewFieldValidationError(models.FieldError{Field: "projectId", Message: "projectId must be a positive integer"})
	}

	at := s.now()
	inserted, err := s.savedRepo.Save(ctx, rc.UserID, projectID, at)
	if err != nil {
		return nil, storeError(err)
	}
	if inserted {
		return &models.SavedProject{UserID: rc.UserID, ProjectID: projectID, CreatedAt: at}, nil
	}

	active, err := s.savedRepo.ProjectActive(ctx, projectID)
	if err != nil {
		return nil, storeError(err)
	}
	if !active {
		return nil, models.NewNotFoundError("Project", projectID)
	}
	return nil, models.NewConflictError("Project is already saved")
}

// Unsave removes the caller's bookmark. It works for projects that were
// soft-deleted after being saved.
func (s *SavedProjectService) Unsave(ctx context.Context, rc models.RequestContext, projectID uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SavedProjectService", "Unsave",
		attribute.Int64("user.id", int64(rc.UserID)),
		attribute.Int64("project.id", int64(projectID)),
	)
	defer func() {
		observability.SavedProjectOps.WithLabelValues("unsave", outcomeOf(err)).Inc()
		observability.EndSpan(span, err)
	}()

	if err := requireUser(rc); err != nil {
		return err
	}

	removed, err := s.savedRepo.Unsave(ctx, rc.UserID, projectID)
	if err != nil {
		return storeError(err)
	}
	if !removed {
		return models.NewNotFoundError("Saved project", projectID)
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case models.HasCode(err, models.CodeConflict):
		return observability.OutcomeConflict
	case models.HasCode(err, models.CodeNotFound):
		return observability.OutcomeNotFound
	case models.HasCode(err, models.CodeUnauthorized), models.HasCode(err, models.CodeForbidden):
		return observability.OutcomeForbidden
	default:
		return observability.OutcomeError
	}
}
