package service

import (
	"context"
	"testing"

	"capsort/internal/models"
	"capsort/internal/repository"
	"capsort/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsService_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewAnalyticsService(repository.NewAnalyticsRepository(env.db))

	ps := env.addProjects(t,
		testkit.ProjectFixture{Title: "A", Author: "Kim Lee", Year: 2020, Field: "IoT"},
		testkit.ProjectFixture{Title: "B", Author: "Tom Ng", Year: 2023, Field: "Database"},
		testkit.ProjectFixture{Title: "C", Author: "Sue Poe", Year: 2023, Field: "IoT", Deleted: true},
	)
	testkit.Save(t, env.db, env.student.ID, ps[1].ID)
	testkit.Save(t, env.db, env.student.ID, ps[2].ID)

	got, err := svc.Dashboard(ctx, env.adminCtx())
	require.NoError(t, err)
	assert.Equal(t, models.AnalyticsTotals{ActiveProjects: 2, DeletedProjects: 1, Students: 1, Admins: 1, Saves: 1}, got.Totals)
	require.Len(t, got.TopSaved, 1)
	assert.Equal(t, ps[1].ID, got.TopSaved[0].ProjectID)
	assert.Len(t, got.ByField, 2)
	assert.Len(t, got.ByYear, 2)

	_, err = svc.Dashboard(ctx, env.studentCtx())
	requireCode(t, err, models.CodeForbidden)
}
