package repository

import (
	"context"

	"capsort/internal/models"

	"gorm.io/gorm"
)

// MaintenanceRepository holds data-cleanup operations run by operators.
type MaintenanceRepository interface {
	ActiveProjects(ctx context.Context) ([]models.Project, error)
	FieldDistribution(ctx context.Context) ([]models.FieldCount, error)
	PruneFields(ctx context.Context, keep []string, dryRun bool) (projects int64, saves int64, err error)
}

type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new maintenance repository instance
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

// ActiveProjects returns every active project ordered by title, year and id.
func (r *maintenanceRepository) ActiveProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Where("status = ?", string(models.ProjectStatusActive)).
		Order("title ASC").Order("year ASC").Order("id ASC").
		Find(&projects).Error
	return projects, err
}

// FieldDistribution counts projects per field across all statuses.
func (r *maintenanceRepository) FieldDistribution(ctx context.Context) ([]models.FieldCount, error) {
	out := []models.FieldCount{}
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Select("field, COUNT(*) AS count").
		Group("field").
		Order("count DESC").Order("field ASC").
		Scan(&out).Error
	return out, err
}

// PruneFields hard-deletes every project whose field is not in keep, removing
// its saves first. Both deletes run in one transaction. With dryRun nothing
// is deleted and the counts describe what would be.
func (r *maintenanceRepository) PruneFields(ctx context.Context, keep []string, dryRun bool) (int64, int64, error) {
	var projects, saves int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		q := tx.Model(&models.Project{})
		if len(keep) > 0 {
			q = q.Where("field NOT IN ?", keep)
		}
		if err := q.Pluck("id", &ids).Error; err != nil {
			return err
		}
		projects = int64(len(ids))
		if len(ids) == 0 {
			return nil
		}

		if dryRun {
			return tx.Model(&models.SavedProject{}).Where("project_id IN ?", ids).Count(&saves).Error
		}

		res := tx.Where("project_id IN ?", ids).Delete(&models.SavedProject{})
		if res.Error != nil {
			return res.Error
		}
		saves = res.RowsAffected

		res = tx.Where("id IN ?", ids).Delete(&models.Project{})
		if res.Error != nil {
			return res.Error
		}
		projects = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return projects, saves, nil
}
