package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"capsort/internal/database"
	"capsort/internal/models"
	"capsort/internal/observability"
	"capsort/internal/repository"
	"capsort/internal/testkit"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavedProjectService_Save(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ps := env.addProjects(t,
		testkit.ProjectFixture{Title: "Smart Irrigation", Author: "Kim Lee", Year: 2020, Field: "IoT"},
		testkit.ProjectFixture{Title: "Old Thesis", Author: "Tom Ng", Year: 2021, Field: "Database", Deleted: true},
	)

	okBefore := testutil.ToFloat64(observability.SavedProjectOps.WithLabelValues("save", observability.OutcomeOK))

	saved, err := env.saved.Save(ctx, env.studentCtx(), ps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, env.student.ID, saved.UserID)
	assert.Equal(t, ps[0].ID, saved.ProjectID)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(observability.SavedProjectOps.WithLabelValues("save", observability.OutcomeOK)))

	_, err = env.saved.Save(ctx, env.studentCtx(), ps[0].ID)
	requireCode(t, err, models.CodeConflict)

	_, err = env.saved.Save(ctx, env.studentCtx(), ps[1].ID)
	requireCode(t, err, models.CodeNotFound)

	_, err = env.saved.Save(ctx, env.studentCtx(), 9999)
	requireCode(t, err, models.CodeNotFound)

	_, err = env.saved.Save(ctx, models.GuestContext(), ps[0].ID)
	requireCode(t, err, models.CodeUnauthorized)

	_, err = env.saved.Save(ctx, env.studentCtx(), 0)
	requireCode(t, err, models.CodeValidation)
}

func TestSavedProjectService_ConcurrentDoubleSave(t *testing.T) {
	env := newTestEnv(t)
	ps := env.addProjects(t, testkit.ProjectFixture{Title: "Edge Gateway", Author: "Kim Lee", Year: 2022, Field: "IoT"})

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.saved.Save(context.Background(), env.studentCtx(), ps[0].ID)
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case models.HasCode(err, models.CodeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)

	var rows int64
	require.NoError(t, env.db.Model(&models.SavedProject{}).
		Where("user_id = ? AND project_id = ?", env.student.ID, ps[0].ID).
		Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestSavedProjectService_Unsave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ps := env.addProjects(t, testkit.ProjectFixture{Title: "Edge Gateway", Author: "Kim Lee", Year: 2022, Field: "IoT"})

	err := env.saved.Unsave(ctx, env.studentCtx(), ps[0].ID)
	requireCode(t, err, models.CodeNotFound)

	testkit.Save(t, env.db, env.student.ID, ps[0].ID)
	require.NoError(t, env.projects.Delete(ctx, env.adminCtx(), ps[0].ID))

	// bookmarks of trashed projects can still be cleared
	require.NoError(t, env.saved.Unsave(ctx, env.studentCtx(), ps[0].ID))
	requireCode(t, env.saved.Unsave(ctx, env.studentCtx(), ps[0].ID), models.CodeNotFound)
}

func TestSavedProjectService_SaveIgnoresStaleReplica(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.addProjects(t, testkit.ProjectFixture{Title: "Smart Irrigation", Author: "Kim Lee", Year: 2020, Field: "IoT"})[0]

	// The replica still holds the project as active.
	replica := testkit.NewSQLiteDB(t)
	uploader := testkit.CreateUser(t, replica, "admin@capsort.com", models.RoleAdmin)
	stale := testkit.CreateProject(t, replica, uploader.ID, testkit.ProjectFixture{Title: p.Title, Author: p.Author, Year: p.Year, Field: p.Field})
	require.Equal(t, p.ID, stale.ID)

	prevDB, prevRead := database.DB, database.ReadDB
	database.DB, database.ReadDB = env.db, replica
	t.Cleanup(func() { database.DB, database.ReadDB = prevDB, prevRead })

	require.NoError(t, env.projects.Delete(ctx, env.adminCtx(), p.ID))

	_, err := env.saved.Save(ctx, env.studentCtx(), p.ID)
	requireCode(t, err, models.CodeNotFound)
}

// failingSavedRepo fails every save; other methods are unused.
type failingSavedRepo struct {
	repository.SavedProjectRepository
}

func (failingSavedRepo) Save(context.Context, uint, uint, time.Time) (bool, error) {
	return false, errors.New("connection refused")
}

func TestSavedProjectService_StoreFailureIsRedacted(t *testing.T) {
	svc := NewSavedProjectService(failingSavedRepo{})

	_, err := svc.Save(context.Background(), models.RequestContext{UserID: 1, Role: models.RoleStudent}, 3)
	requireCode(t, err, models.CodeStore)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.NotContains(t, appErr.Message, "connection refused")
}
