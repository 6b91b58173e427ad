package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"capsort/internal/models"
	"capsort/internal/testkit"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestSavedProjectRepository_SaveStatementShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSavedProjectRepository(db)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO saved_projects (user_id, project_id, created_at)
SELECT $1, projects.id, $2 FROM projects WHERE projects.id = $3 AND projects.status = $4
ON CONFLICT (user_id, project_id) DO NOTHING`)).
		WithArgs(7, at, 11, "active").
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.Save(context.Background(), 7, 11, at)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedProjectRepository_SaveStoreError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSavedProjectRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO saved_projects`)).
		WillReturnError(errors.New("connection refused"))

	inserted, err := repo.Save(context.Background(), 1, 1, time.Now())
	assert.Error(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedProjectRepository_UnsaveStatementShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSavedProjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "saved_projects" WHERE user_id = $1 AND project_id = $2`)).
		WithArgs(7, 11).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	removed, err := repo.Unsave(context.Background(), 7, 11)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedProjectRepository_Relationship(t *testing.T) {
	db := testkit.NewSQLiteDB(t)
	repo := NewSavedProjectRepository(db)
	ctx := context.Background()
	_, projects := seedCatalog(t, db)
	student := testkit.CreateUser(t, db, "john@example.com", models.RoleStudent)
	other := testkit.CreateUser(t, db, "jane@example.com", models.RoleStudent)

	t.Run("first save inserts, second is a no-op", func(t *testing.T) {
		inserted, err := repo.Save(ctx, student.ID, projects[0].ID, baseTime)
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = repo.Save(ctx, student.ID, projects[0].ID, baseTime)
		require.NoError(t, err)
		assert.False(t, inserted)

		var n int64
		require.NoError(t, db.Model(&models.SavedProject{}).Where("user_id = ?", student.ID).Count(&n).Error)
		assert.Equal(t, int64(1), n)
	})

	t.Run("deleted and missing projects cannot be saved", func(t *testing.T) {
		inserted, err := repo.Save(ctx, student.ID, projects[5].ID, baseTime)
		require.NoError(t, err)
		assert.False(t, inserted)

		inserted, err = repo.Save(ctx, student.ID, 9999, baseTime)
		require.NoError(t, err)
		assert.False(t, inserted)
	})

	t.Run("saved listing is scoped to the user and filtered", func(t *testing.T) {
		for _, p := range []*models.Project{projects[1], projects[3]} {
			_, err := repo.Save(ctx, student.ID, p.ID, baseTime)
			require.NoError(t, err)
		}
		_, err := repo.Save(ctx, other.ID, projects[2].ID, baseTime)
		require.NoError(t, err)

		items, total, err := repo.ListSaved(ctx, student.ID, models.ProjectFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, []string{"Clinic Records Schema", "Library Inventory DB", "Smart Irrigation System"}, titles(items))

		items, total, err = repo.ListSaved(ctx, student.ID, models.ProjectFilter{Field: "Database", Limit: 1, Page: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, []string{"Library Inventory DB"}, titles(items))
	})

	t.Run("soft-deleted projects drop out of saved listings", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Project{}).Where("id = ?", projects[3].ID).
			Update("status", string(models.ProjectStatusDeleted)).Error)

		items, total, err := repo.ListSaved(ctx, student.ID, models.ProjectFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.NotContains(t, titles(items), "Clinic Records Schema")

		// The bookmark itself survives and can still be removed.
		removed, err := repo.Unsave(ctx, student.ID, projects[3].ID)
		require.NoError(t, err)
		assert.True(t, removed)
	})

	t.Run("saved ids are restricted to the requested page", func(t *testing.T) {
		ids, err := repo.SavedProjectIDs(ctx, student.ID, []uint{projects[0].ID, projects[2].ID, projects[4].ID})
		require.NoError(t, err)
		assert.Equal(t, []uint{projects[0].ID}, ids)

		ids, err = repo.SavedProjectIDs(ctx, student.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("unsave of a missing bookmark reports false", func(t *testing.T) {
		removed, err := repo.Unsave(ctx, student.ID, projects[4].ID)
		require.NoError(t, err)
		assert.False(t, removed)

		_, err = repo.Get(ctx, student.ID, projects[4].ID)
		assert.True(t, IsNotFound(err))
	})

	t.Run("hard delete cascades to saves", func(t *testing.T) {
		require.NoError(t, db.Exec("DELETE FROM projects WHERE id = ?", projects[1].ID).Error)
		_, err := repo.Get(ctx, student.ID, projects[1].ID)
		assert.True(t, IsNotFound(err))
	})
}

func TestSavedProjectRepository_ProjectActive(t *testing.T) {
	db := testkit.NewSQLiteDB(t)
	repo := NewSavedProjectRepository(db)
	ctx := context.Background()
	admin := testkit.CreateUser(t, db, "admin@capsort.com", models.RoleAdmin)
	live := testkit.CreateProject(t, db, admin.ID, testkit.ProjectFixture{Title: "Live", Author: "Kim Lee", Year: 2021, Field: "IoT"})
	gone := testkit.CreateProject(t, db, admin.ID, testkit.ProjectFixture{Title: "Gone", Author: "Kim Lee", Year: 2021, Field: "IoT", Deleted: true})

	for id, want := range map[uint]bool{live.ID: true, gone.ID: false, 999: false} {
		got, err := repo.ProjectActive(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got, "project %d", id)
	}
}
