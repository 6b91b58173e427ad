package service

import (
	"context"

	"capsort/internal/models"
	"capsort/internal/repository"
)

const topSavedLimit = 5

type AnalyticsService struct {
	repo repository.AnalyticsRepository
}

func NewAnalyticsService(repo repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// Dashboard returns the admin summary.
func (s *AnalyticsService) Dashboard(ctx context.Context, rc models.RequestContext) (*models.Analytics, error) {
	if err := requireAdmin(rc); err != nil {
		return nil, err
	}

	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	byField, err := s.repo.ByField(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	byYear, err := s.repo.ByYear(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	top, err := s.repo.TopSaved(ctx, topSavedLimit)
	if err != nil {
		return nil, storeError(err)
	}

	return &models.Analytics{Totals: totals, ByField: byField, ByYear: byYear, TopSaved: top}, nil
}
