package repository

import (
	"context"
	"time"

	"capsort/internal/models"

	"gorm.io/gorm"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	GetActiveByID(ctx context.Context, id uint) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) (bool, error)
	SoftDelete(ctx context.Context, id uint, at time.Time) (bool, error)
	Restore(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter models.ProjectFilter, status models.ProjectStatus) ([]models.Project, int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.Status == "" {
		project.Status = models.ProjectStatusActive
	}
	return r.db.WithContext(ctx).Create(project).Error
}

// GetByID returns the project regardless of status.
func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) GetActiveByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := readDB(r.db).WithContext(ctx).
		Where("id = ? AND status = ?", id, string(models.ProjectStatusActive)).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update writes the editable columns of an active project.
// It reports false when no active project has that ID.
func (r *projectRepository) Update(ctx context.Context, project *models.Project) (bool, error) {
	project.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND status = ?", project.ID, string(models.ProjectStatusActive)).
		Updates(map[string]interface{}{
			"title":      project.Title,
			"author":     project.Author,
			"year":       project.Year,
			"field":      project.Field,
			"file_url":   project.FileURL,
			"updated_at": project.UpdatedAt,
		})
	return res.RowsAffected > 0, res.Error
}

// SoftDelete moves an active project to the trash.
func (r *projectRepository) SoftDelete(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND status = ?", id, string(models.ProjectStatusActive)).
		Updates(map[string]interface{}{
			"status":     string(models.ProjectStatusDeleted),
			"deleted_at": at,
			"updated_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

// Restore brings a trashed project back. A unique violation means an active
// project with the same title and author exists.
func (r *projectRepository) Restore(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND status = ?", id, string(models.ProjectStatusDeleted)).
		Updates(map[string]interface{}{
			"status":     string(models.ProjectStatusActive),
			"deleted_at": nil,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected > 0, res.Error
}

// List returns one page of projects with the given status, newest first.
func (r *projectRepository) List(ctx context.Context, filter models.ProjectFilter, status models.ProjectStatus) ([]models.Project, int64, error) {
	base := readDB(r.db).WithContext(ctx).
		Model(&models.Project{}).
		Where("projects.status = ?", string(status))
	base = ApplyProjectFilter(base, filter).Session(&gorm.Session{})

	return paginate(base, filter)
}
