package repository

import (
	"context"
	"testing"
	"time"

	"capsort/internal/models"
	"capsort/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// seedCatalog creates six projects; index i was created i hours after baseTime.
func seedCatalog(t *testing.T, db *gorm.DB) (*models.User, []*models.Project) {
	t.Helper()
	admin := testkit.CreateUser(t, db, "admin@capsort.com", models.RoleAdmin)

	specs := []testkit.ProjectFixture{
		{Title: "Smart Irrigation System", Author: "John Doe", Year: 2020, Field: "IoT"},
		{Title: "Library Inventory DB", Author: "Jane Smith", Year: 2021, Field: "Database"},
		{Title: "Home Energy Monitor", Author: "Bob Johnson", Year: 2022, Field: "IoT"},
		{Title: "Clinic Records Schema", Author: "Alice Brown", Year: 2023, Field: "Database"},
		{Title: "100% Uptime Sensors", Author: "Diana Prince", Year: 2023, Field: "IoT"},
		{Title: "Archived Thesis", Author: "Edward Norton", Year: 2022, Field: "Database", Deleted: true},
	}
	var out []*models.Project
	for i, s := range specs {
		s.CreatedAt = baseTime.Add(time.Duration(i) * time.Hour)
		out = append(out, testkit.CreateProject(t, db, admin.ID, s))
	}
	return admin, out
}

func titles(ps []models.Project) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Title)
	}
	return out
}

func TestProjectRepository_ListFilters(t *testing.T) {
	db := testkit.NewSQLiteDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	seedCatalog(t, db)

	tests := []struct {
		name   string
		filter models.ProjectFilter
		want   []string
	}{
		{
			name:   "no filter lists active newest first",
			filter: models.ProjectFilter{},
			want:   []string{"100% Uptime Sensors", "Clinic Records Schema", "Home Energy Monitor", "Library Inventory DB", "Smart Irrigation System"},
		},
		{
			name:   "search matches title case-insensitively",
			filter: models.ProjectFilter{Search: "ENERGY"},
			want:   []string{"Home Energy Monitor"},
		},
		{
			name:   "search matches author",
			filter: models.ProjectFilter{Search: "smith"},
			want:   []string{"Library Inventory DB"},
		},
		{
			name:   "search wildcard is literal",
			filter: models.ProjectFilter{Search: "%"},
			want:   []string{"100% Uptime Sensors"},
		},
		{
			name:   "search underscore is literal",
			filter: models.ProjectFilter{Search: "_"},
			want:   []string{},
		},
		{
			name:   "field exact",
			filter: models.ProjectFilter{Field: "Database"},
			want:   []string{"Clinic Records Schema", "Library Inventory DB"},
		},
		{
			name:   "field all disables filter",
			filter: models.ProjectFilter{Field: "All", Limit: 2},
			want:   []string{"100% Uptime Sensors", "Clinic Records Schema"},
		},
		{
			name:   "exact year",
			filter: models.ProjectFilter{Year: intPtr(2022)},
			want:   []string{"Home Energy Monitor"},
		},
		{
			name:   "year range inclusive",
			filter: models.ProjectFilter{YearFrom: intPtr(2021), YearTo: intPtr(2022)},
			want:   []string{"Home Energy Monitor", "Library Inventory DB"},
		},
		{
			name:   "only yearTo has no lower bound",
			filter: models.ProjectFilter{YearTo: intPtr(2021)},
			want:   []string{"Library Inventory DB", "Smart Irrigation System"},
		},
		{
			name:   "filters combine",
			filter: models.ProjectFilter{Field: "IoT", YearFrom: intPtr(2021), Search: "o"},
			want:   []string{"100% Uptime Sensors", "Home Energy Monitor"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := repo.List(ctx, tt.filter, models.ProjectStatusActive)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(items))
			if tt.filter.Limit == 0 {
				assert.Equal(t, int64(len(tt.want)), total)
			}
			for _, p := range items {
				assert.Equal(t, models.ProjectStatusActive, p.Status)
				assert.False(t, p.IsDeleted)
			}
		})
	}
}

func TestProjectRepository_YearFromDefaultsUpperBoundToCurrentYear(t *testing.T) {
	db := testkit.NewSQLiteDB(t)
	repo := NewProjectRepository(db)
	seedCatalog(t, db)

	orig := currentYear
	currentYear = func() int { return 2022 }
	t.Cleanup(func() { currentYear = orig })

	items, total, err := repo.List(context.Background(), models.ProjectFilter{YearFrom: intPtr(2021)}, models.ProjectStatusActive)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"Home Energy Monitor", "Library Inventory DB"}, titles(items))
}

func TestProjectRepository_Pagination(t *testing.T) {
	db := testkit.NewSQLiteDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	seedCatalog(t, db)

	const total = 5
	for limit := 1; limit <= 6; limit++ {
		for page := 1; page <= 7; page++ {
			items, got, err := repo.List(ctx, models.ProjectFilter{Page: page, Limit: limit}, models.ProjectStatusActive)
			require.NoError(t, err)
			assert.Equal(t, int64(total), got)

			want := total - (page-1)*limit
			if want < 0 {
				want = 0
			}
			if want > limit {
				want = limit
			}
			assert.Len(t, items, want, "page=%d limit=%d", page, limit)
			assert.NotNil(t, items)
		}
	}

	items, _, err := repo.List(ctx, models.ProjectFilter{Page: 2, Limit: 1}, models.ProjectStatusActive)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Clinic Records Schema", items[0].Title)
}

func TestProjectRepository_OrderBreaksTiesByID(t *testing.T) {
	db := testkit.NewSQLiteDB(t)
	repo := NewProjectRepository(db)
	admin := testkit.CreateUser(t, db, "a@x.com", models.RoleAdmin)

	first := testkit.CreateProject(t, db, admin.ID, testkit.ProjectFixture{Title: "One", Author: "K", Year: 2020, Field: "IoT", CreatedAt: baseTime})
	second := testkit.CreateProject(t, db, admin.ID, testkit.ProjectFixture{Title: "Two", Author: "K", Year: 2020, Field: "IoT", CreatedAt: baseTime})

	items, _, err := repo.List(context.Background(), models.ProjectFilter{}, models.ProjectStatusActive)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
}

func TestProjectRepository_Lifecycle(t *testing.T) {
	db := testkit.NewSQLiteDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	_, projects := seedCatalog(t, db)

	t.Run("duplicate active title and author is a unique violation", func(t *testing.T) {
		dup := &models.Project{
			Title: projects[0].Title, Author: projects[0].Author, Year: 2024, Field: "IoT",
			FileURL: "https://example.com/x.pdf", UploadedBy: projects[0].UploadedBy,
		}
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("same title and author as a deleted project is allowed", func(t *testing.T) {
		p := &models.Project{
			Title: projects[5].Title, Author: projects[5].Author, Year: 2022, Field: "Database",
			FileURL: "https://example.com/y.pdf", UploadedBy: projects[5].UploadedBy,
		}
		require.NoError(t, repo.Create(ctx, p))
		assert.Equal(t, models.ProjectStatusActive, p.Status)

		restored, err := repo.Restore(ctx, projects[5].ID)
		assert.False(t, restored)
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("soft delete hides from listing and trash shows it", func(t *testing.T) {
		ok, err := repo.SoftDelete(ctx, projects[1].ID, baseTime.Add(48*time.Hour))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.SoftDelete(ctx, projects[1].ID, baseTime)
		require.NoError(t, err)
		assert.False(t, ok, "already deleted")

		_, err = repo.GetActiveByID(ctx, projects[1].ID)
		assert.True(t, IsNotFound(err))

		got, err := repo.GetByID(ctx, projects[1].ID)
		require.NoError(t, err)
		assert.True(t, got.IsDeleted)
		assert.NotNil(t, got.DeletedAt)

		trash, total, err := repo.List(ctx, models.ProjectFilter{Field: "Database"}, models.ProjectStatusDeleted)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.ElementsMatch(t, []string{"Library Inventory DB", "Archived Thesis"}, titles(trash))
	})

	t.Run("restore returns the project to listings", func(t *testing.T) {
		ok, err := repo.Restore(ctx, projects[1].ID)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetActiveByID(ctx, projects[1].ID)
		require.NoError(t, err)
		assert.Nil(t, got.DeletedAt)
	})

	t.Run("update changes editable columns of active projects only", func(t *testing.T) {
		p := *projects[2]
		p.Title = "Home Energy Monitor v2"
		ok, err := repo.Update(ctx, &p)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Home Energy Monitor v2", got.Title)

		gone := *projects[5]
		gone.Title = "Nope"
		ok, err = repo.Update(ctx, &gone)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
}
