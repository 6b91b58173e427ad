package repository

import (
	"context"
	"time"

	"capsort/internal/models"

	"gorm.io/gorm"
)

// SavedProjectRepository manages the user/project bookmark relation.
type SavedProjectRepository interface {
	Save(ctx context.Context, userID, projectID uint, at time.Time) (bool, error)
	ProjectActive(ctx context.Context, projectID uint) (bool, error)
	Unsave(ctx context.Context, userID, projectID uint) (bool, error)
	Get(ctx context.Context, userID, projectID uint) (*models.SavedProject, error)
	ListSaved(ctx context.Context, userID uint, filter models.ProjectFilter) ([]models.Project, int64, error)
	SavedProjectIDs(ctx context.Context, userID uint, projectIDs []uint) ([]uint, error)
}

type savedProjectRepository struct {
	db *gorm.DB
}

// NewSavedProjectRepository creates a new saved-project repository instance
func NewSavedProjectRepository(db *gorm.DB) SavedProjectRepository {
	return &savedProjectRepository{db: db}
}

const saveProjectSQL = `INSERT INTO saved_projects (user_id, project_id, created_at)
SELECT ?, projects.id, ? FROM projects WHERE projects.id = ? AND projects.status = ?
ON CONFLICT (user_id, project_id) DO NOTHING`

// Save inserts the bookmark if the project is active and the pair is new.
// It reports false when nothing was inserted; the caller decides why.
func (r *savedProjectRepository) Save(ctx context.Context, userID, projectID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(saveProjectSQL, userID, at, projectID, string(models.ProjectStatusActive))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ProjectActive reports whether projectID is an active project. It reads the
// primary, the same handle Save writes through, so it sees what the insert saw.
func (r *savedProjectRepository) ProjectActive(ctx context.Context, projectID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND status = ?", projectID, string(models.ProjectStatusActive)).
		Count(&n).Error
	return n > 0, err
}

// Unsave removes the bookmark. It reports false when there was none.
func (r *savedProjectRepository) Unsave(ctx context.Context, userID, projectID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.SavedProject{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *savedProjectRepository) Get(ctx context.Context, userID, projectID uint) (*models.SavedProject, error) {
	var saved models.SavedProject
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListSaved returns the caller's saved active projects, filtered and paged
// exactly like the public listing.
func (r *savedProjectRepository) ListSaved(ctx context.Context, userID uint, filter models.ProjectFilter) ([]models.Project, int64, error) {
	base := readDB(r.db).WithContext(ctx).
		Model(&models.Project{}).
		Joins("JOIN saved_projects ON saved_projects.project_id = projects.id AND saved_projects.user_id = ?", userID).
		Where("projects.status = ?", string(models.ProjectStatusActive))
	base = ApplyProjectFilter(base, filter).Session(&gorm.Session{})

	return paginate(base, filter)
}

// SavedProjectIDs returns the subset of projectIDs the user has saved.
func (r *savedProjectRepository) SavedProjectIDs(ctx context.Context, userID uint, projectIDs []uint) ([]uint, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := readDB(r.db).WithContext(ctx).
		Model(&models.SavedProject{}).
		Where("user_id = ? AND project_id IN ?", userID, projectIDs).
		Pluck("project_id", &ids).Error
	return ids, err
}
