package repository

import (
	"strings"
	"time"

	"capsort/internal/models"

	"gorm.io/gorm"
)

// currentYear is the implicit upper bound of an open-ended year range.
var currentYear = func() int { return time.Now().Year() }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using '\' as escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ApplyProjectFilter narrows q (rooted at projects) by the filter's search,
// field and year constraints. It does not touch status, ordering or paging.
func ApplyProjectFilter(q *gorm.DB, f models.ProjectFilter) *gorm.DB {
	f = f.Normalized()

	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		q = q.Where(
			`(LOWER(projects.title) LIKE LOWER(?) ESCAPE '\' OR LOWER(projects.author) LIKE LOWER(?) ESCAPE '\')`,
			pattern, pattern,
		)
	}

	if f.Field != "" {
		q = q.Where("projects.field = ?", f.Field)
	}

	switch {
	case f.Year != nil:
		q = q.Where("projects.year = ?", *f.Year)
	case f.YearFrom != nil || f.YearTo != nil:
		if f.YearFrom != nil {
			q = q.Where("projects.year >= ?", *f.YearFrom)
		}
		upper := currentYear()
		if f.YearTo != nil {
			upper = *f.YearTo
		}
		q = q.Where("projects.year <= ?", upper)
	}

	return q
}

// orderNewestFirst is the listing order shared by every project listing.
func orderNewestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("projects.created_at DESC").Order("projects.id DESC")
}

// paginate counts the rows matched by base and loads the requested page.
// base must already be a reusable session.
func paginate(base *gorm.DB, f models.ProjectFilter) ([]models.Project, int64, error) {
	f = f.Normalized()

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	projects := []models.Project{}
	if total == 0 || int64(f.Offset()) >= total {
		return projects, total, nil
	}

	err := orderNewestFirst(base).
		Select("projects.*").
		Limit(f.Limit).
		Offset(f.Offset()).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}
