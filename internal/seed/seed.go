// Package seed loads demo data for development and tests.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"capsort/internal/middleware"
	"capsort/internal/models"
	"capsort/internal/service"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options controls a seeding run.
type Options struct {
	// Fake adds this many generated projects after the catalog.
	Fake int
	// Seed makes random choices repeatable; zero uses the clock.
	Seed int64
}

// Summary reports what a run inserted. Rows that already existed are not counted.
type Summary struct {
	Users    int
	Projects int
	Saves    int
}

// Seeder writes the catalog and generated data.
type Seeder struct {
	db      *gorm.DB
	catalog *Catalog
	factory *Factory
	opts    Options
}

// NewSeeder creates a seeder for the embedded catalog.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	return NewSeederWithCatalog(db, catalog, opts), nil
}

// NewSeederWithCatalog creates a seeder for an explicit catalog.
func NewSeederWithCatalog(db *gorm.DB, catalog *Catalog, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		catalog: catalog,
		factory: NewFactory(opts.Seed, catalog.Fields()),
		opts:    opts,
	}
}

// Run upserts users and projects, then links each student to a random set of
// projects. Running it again is safe.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	var sum Summary
	db := s.db.WithContext(ctx)

	admin, created, err := s.upsertAccount(db, s.catalog.Admin, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if created {
		sum.Users++
	}

	studentHash, err := service.HashPassword(s.catalog.Students.Password)
	if err != nil {
		return nil, fmt.Errorf("hash student password: %w", err)
	}
	students := make([]*models.User, 0, len(s.catalog.Students.Accounts))
	for _, acct := range s.catalog.Students.Accounts {
		if acct.ContactNumber == "" {
			acct.ContactNumber = s.catalog.Students.ContactNumber
		}
		u := &models.User{
			FullName:      acct.FullName,
			Email:         acct.Email,
			ContactNumber: acct.ContactNumber,
			Password:      studentHash,
			Role:          models.RoleStudent,
		}
		created, err := upsertUser(db, u)
		if err != nil {
			return nil, fmt.Errorf("seed student %s: %w", acct.Email, err)
		}
		if created {
			sum.Users++
		}
		students = append(students, u)
	}
	middleware.Logger.Info("seeded users", "admin", admin.Email, "students", len(students))

	projects := make([]*models.Project, 0, len(s.catalog.Projects)+s.opts.Fake)
	for _, cp := range s.catalog.Projects {
		p := &models.Project{
			Title:      cp.Title,
			Author:     cp.Author,
			Year:       cp.Year,
			Field:      cp.Field,
			FileURL:    FileURL(cp.Title),
			UploadedBy: s.uploader(admin, students),
			Status:     models.ProjectStatusActive,
		}
		created, err := upsertProject(db, p)
		if err != nil {
			return nil, fmt.Errorf("seed project %q: %w", cp.Title, err)
		}
		if created {
			sum.Projects++
		}
		projects = append(projects, p)
	}
	for i := 0; i < s.opts.Fake; i++ {
		p := s.factory.Project(s.uploader(admin, students))
		created, err := upsertProject(db, p)
		if err != nil {
			return nil, fmt.Errorf("seed generated project %q: %w", p.Title, err)
		}
		if created {
			sum.Projects++
		}
		projects = append(projects, p)
	}
	middleware.Logger.Info("seeded projects", "catalog", len(s.catalog.Projects), "generated", s.opts.Fake)

	if len(projects) > 0 {
		for _, student := range students {
			n := s.factory.Between(s.catalog.Saves.Min, s.catalog.Saves.Max)
			for _, idx := range s.factory.Pick(len(projects), n) {
				inserted, err := insertSave(db, student.ID, projects[idx].ID)
				if err != nil {
					return nil, fmt.Errorf("seed save %d/%d: %w", student.ID, projects[idx].ID, err)
				}
				sum.Saves += int(inserted)
			}
		}
	}
	middleware.Logger.Info("seeding complete", "users", sum.Users, "projects", sum.Projects, "saves", sum.Saves)

	return &sum, nil
}

// uploader picks a random student most of the time and the admin otherwise.
func (s *Seeder) uploader(admin *models.User, students []*models.User) uint {
	if len(students) == 0 || !s.factory.Chance(0.7) {
		return admin.ID
	}
	return students[s.factory.Between(0, len(students)-1)].ID
}

func (s *Seeder) upsertAccount(db *gorm.DB, acct Account, role models.Role) (*models.User, bool, error) {
	hash, err := service.HashPassword(acct.Password)
	if err != nil {
		return nil, false, err
	}
	u := &models.User{
		FullName:      acct.FullName,
		Email:         acct.Email,
		ContactNumber: acct.ContactNumber,
		Password:      hash,
		Role:          role,
	}
	created, err := upsertUser(db, u)
	return u, created, err
}

// upsertUser inserts u unless the email exists, then loads the stored row into u.
func upsertUser(db *gorm.DB, u *models.User) (bool, error) {
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(u)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	return false, db.Where("email = ?", u.Email).First(u).Error
}

// upsertProject inserts p unless an active project has the same title and
// author, then loads the stored row into p.
func upsertProject(db *gorm.DB, p *models.Project) (bool, error) {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	res := db.Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "title"}, {Name: "author"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "status = 'active'"}}},
		DoNothing:   true,
	}).Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	err := db.Where("title = ? AND author = ? AND status = ?", p.Title, p.Author, models.ProjectStatusActive).
		First(p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("project %q by %s vanished during upsert", p.Title, p.Author)
	}
	return false, err
}

func insertSave(db *gorm.DB, userID, projectID uint) (int64, error) {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.SavedProject{
		UserID:    userID,
		ProjectID: projectID,
		CreatedAt: time.Now().UTC(),
	})
	return res.RowsAffected, res.Error
}
