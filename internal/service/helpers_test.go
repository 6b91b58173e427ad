package service

import (
	"testing"
	"time"

	"capsort/internal/cache"
	"capsort/internal/featureflags"
	"capsort/internal/models"
	"capsort/internal/repository"
	"capsort/internal/testkit"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	mr       *miniredis.Miniredis
	redis    *redis.Client
	listing  *ListingService
	saved    *SavedProjectService
	projects *ProjectService
	admin    *models.User
	student  *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testkit.NewSQLiteDB(t)
	mr := miniredis.RunT(t)
	rdb, err := cache.NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	projectRepo := repository.NewProjectRepository(db)
	savedRepo := repository.NewSavedProjectRepository(db)

	return &testEnv{
		db:       db,
		mr:       mr,
		redis:    rdb,
		listing:  NewListingService(projectRepo, savedRepo, rdb, featureflags.NewManager("listing_cache=on"), time.Minute),
		saved:    NewSavedProjectService(savedRepo),
		projects: NewProjectService(projectRepo, rdb),
		admin:    testkit.CreateUser(t, db, "admin@capsort.com", models.RoleAdmin),
		student:  testkit.CreateUser(t, db, "student@capsort.com", models.RoleStudent),
	}
}

func (e *testEnv) adminCtx() models.RequestContext {
	return models.RequestContext{UserID: e.admin.ID, Role: models.RoleAdmin}
}

func (e *testEnv) studentCtx() models.RequestContext {
	return models.RequestContext{UserID: e.student.ID, Role: models.RoleStudent}
}

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// addProjects creates projects in order; later ones are newer.
func (e *testEnv) addProjects(t *testing.T, specs ...testkit.ProjectFixture) []*models.Project {
	t.Helper()
	out := make([]*models.Project, 0, len(specs))
	for i, s := range specs {
		if s.CreatedAt.IsZero() {
			s.CreatedAt = baseTime.Add(time.Duration(i) * time.Hour)
		}
		out = append(out, testkit.CreateProject(t, e.db, e.admin.ID, s))
	}
	return out
}

func intPtr(v int) *int { return &v }

func viewTitles(items []models.ProjectView) []string {
	out := make([]string, 0, len(items))
	for _, v := range items {
		out = append(out, v.Title)
	}
	return out
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}
