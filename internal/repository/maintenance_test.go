package repository

import (
	"context"
	"testing"

	"capsort/internal/models"
	"capsort/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceRepository_PruneFields(t *testing.T) {
	db := testkit.NewSQLiteDB(t)
	repo := NewMaintenanceRepository(db)
	ctx := context.Background()
	admin, projects := seedCatalog(t, db)

	ai := testkit.CreateProject(t, db, admin.ID, testkit.ProjectFixture{Title: "Vision Grader", Author: "Fiona Green", Year: 2024, Field: "AI"})
	web := testkit.CreateProject(t, db, admin.ID, testkit.ProjectFixture{Title: "Campus Portal", Author: "Charlie Wilson", Year: 2024, Field: "Web"})
	student := testkit.CreateUser(t, db, "s@example.com", models.RoleStudent)
	testkit.Save(t, db, student.ID, ai.ID)
	testkit.Save(t, db, student.ID, web.ID)
	testkit.Save(t, db, student.ID, projects[0].ID)

	before, err := repo.FieldDistribution(ctx)
	require.NoError(t, err)
	assert.Len(t, before, 4)

	t.Run("dry run deletes nothing", func(t *testing.T) {
		n, saves, err := repo.PruneFields(ctx, []string{"IoT", "Database"}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, int64(2), saves)

		after, err := repo.FieldDistribution(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("prune removes projects and their saves", func(t *testing.T) {
		n, saves, err := repo.PruneFields(ctx, []string{"IoT", "Database"}, false)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, int64(2), saves)

		after, err := repo.FieldDistribution(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.FieldCount{{Field: "Database", Count: 3}, {Field: "IoT", Count: 3}}, after)

		var remaining int64
		require.NoError(t, db.Model(&models.SavedProject{}).Count(&remaining).Error)
		assert.Equal(t, int64(1), remaining)
	})
}

func TestMaintenanceRepository_ActiveProjects(t *testing.T) {
	db := testkit.NewSQLiteDB(t)
	repo := NewMaintenanceRepository(db)
	seedCatalog(t, db)

	items, err := repo.ActiveProjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, "100% Uptime Sensors", items[0].Title)
}
