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

func TestMaintenanceService_Duplicates(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMaintenanceService(repository.NewMaintenanceRepository(env.db))

	env.addProjects(t,
		testkit.ProjectFixture{Title: "Smart Farm", Author: "Kim Lee", Year: 2021, Field: "IoT"},
		testkit.ProjectFixture{Title: "Smart Farm", Author: "Tom Ng", Year: 2021, Field: "IoT"},
		testkit.ProjectFixture{Title: "Smart Farm", Author: "Sue Poe", Year: 2022, Field: "IoT"},
		testkit.ProjectFixture{Title: "Smart Farm", Author: "Kim Lee", Year: 2021, Field: "IoT", Deleted: true},
		testkit.ProjectFixture{Title: "Unique Paper", Author: "Kim Lee", Year: 2021, Field: "Database"},
	)

	groups, err := svc.Duplicates(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Smart Farm", groups[0].Title)
	assert.Equal(t, 2021, groups[0].Year)
	assert.Equal(t, []string{"Kim Lee", "Tom Ng"}, groups[0].Authors)
	assert.False(t, groups[0].SameWork)
	assert.Len(t, groups[0].IDs, 2)
}

func TestMaintenanceService_DuplicatesSameWork(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMaintenanceService(repository.NewMaintenanceRepository(env.db))

	// the active-row unique index forbids exact copies, but case and
	// spacing variants slip through
	env.addProjects(t,
		testkit.ProjectFixture{Title: "Smart Farm", Author: "Kim Lee", Year: 2021, Field: "IoT"},
		testkit.ProjectFixture{Title: "smart  farm", Author: "KIM LEE", Year: 2021, Field: "IoT"},
	)

	groups, err := svc.Duplicates(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].SameWork)
}

func TestMaintenanceService_PruneFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewMaintenanceService(repository.NewMaintenanceRepository(env.db))

	ps := env.addProjects(t,
		testkit.ProjectFixture{Title: "A", Author: "Kim Lee", Year: 2021, Field: "IoT"},
		testkit.ProjectFixture{Title: "B", Author: "Kim Lee", Year: 2021, Field: "Database"},
		testkit.ProjectFixture{Title: "C", Author: "Kim Lee", Year: 2021, Field: "Robotics"},
		testkit.ProjectFixture{Title: "D", Author: "Kim Lee", Year: 2021, Field: "Robotics", Deleted: true},
	)
	testkit.Save(t, env.db, env.student.ID, ps[2].ID)
	testkit.Save(t, env.db, env.student.ID, ps[0].ID)

	_, err := svc.PruneFields(ctx, []string{" "}, false)
	requireCode(t, err, models.CodeValidation)

	dry, err := svc.PruneFields(ctx, []string{"IoT", "Database"}, true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Equal(t, int64(2), dry.Projects)
	assert.Equal(t, int64(1), dry.Saves)
	assert.Equal(t, []models.FieldCount{{Field: "Robotics", Count: 2}, {Field: "Database", Count: 1}, {Field: "IoT", Count: 1}}, dry.Before)
	assert.Equal(t, []models.FieldCount{{Field: "Database", Count: 1}, {Field: "IoT", Count: 1}}, dry.After)

	var count int64
	require.NoError(t, env.db.Model(&models.Project{}).Count(&count).Error)
	assert.Equal(t, int64(4), count, "dry run deletes nothing")

	res, err := svc.PruneFields(ctx, []string{"IoT", "Database"}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Projects)
	assert.Equal(t, int64(1), res.Saves)
	assert.Equal(t, dry.After, res.After)

	require.NoError(t, env.db.Model(&models.SavedProject{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
