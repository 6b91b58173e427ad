package repository

import (
	"context"

	"capsort/internal/models"

	"gorm.io/gorm"
)

// AnalyticsRepository computes aggregate counts for the admin dashboard.
type AnalyticsRepository interface {
	Totals(ctx context.Context) (models.AnalyticsTotals, error)
	ByField(ctx context.Context) ([]models.FieldCount, error)
	ByYear(ctx context.Context) ([]models.YearCount, error)
	TopSaved(ctx context.Context, limit int) ([]models.SavedCount, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository instance
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Totals(ctx context.Context) (models.AnalyticsTotals, error) {
	db := readDB(r.db).WithContext(ctx)
	var t models.AnalyticsTotals

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&t.ActiveProjects, db.Model(&models.Project{}).Where("status = ?", string(models.ProjectStatusActive))},
		{&t.DeletedProjects, db.Model(&models.Project{}).Where("status = ?", string(models.ProjectStatusDeleted))},
		{&t.Students, db.Model(&models.User{}).Where("role = ?", string(models.RoleStudent))},
		{&t.Admins, db.Model(&models.User{}).Where("role = ?", string(models.RoleAdmin))},
		{&t.Saves, db.Model(&models.SavedProject{}).
			Joins("JOIN projects ON projects.id = saved_projects.project_id").
			Where("projects.status = ?", string(models.ProjectStatusActive))},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return models.AnalyticsTotals{}, err
		}
	}
	return t, nil
}

func (r *analyticsRepository) ByField(ctx context.Context) ([]models.FieldCount, error) {
	out := []models.FieldCount{}
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Project{}).
		Select("field, COUNT(*) AS count").
		Where("status = ?", string(models.ProjectStatusActive)).
		Group("field").
		Order("count DESC").Order("field ASC").
		Scan(&out).Error
	return out, err
}

func (r *analyticsRepository) ByYear(ctx context.Context) ([]models.YearCount, error) {
	out := []models.YearCount{}
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Project{}).
		Select("year, COUNT(*) AS count").
		Where("status = ?", string(models.ProjectStatusActive)).
		Group("year").
		Order("year ASC").
		Scan(&out).Error
	return out, err
}

func (r *analyticsRepository) TopSaved(ctx context.Context, limit int) ([]models.SavedCount, error) {
	out := []models.SavedCount{}
	err := readDB(r.db).WithContext(ctx).
		Table("saved_projects").
		Select("projects.id AS project_id, projects.title AS title, COUNT(*) AS saves").
		Joins("JOIN projects ON projects.id = saved_projects.project_id").
		Where("projects.status = ?", string(models.ProjectStatusActive)).
		Group("projects.id, projects.title").
		Order("saves DESC").Order("projects.id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
