// Package testkit holds fixtures shared by package tests.
package testkit

import (
	"fmt"
	"testing"
	"time"

	"capsort/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens an isolated in-memory database with foreign keys enforced
// and the application schema migrated.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// One connection keeps the in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Project{}, &models.SavedProject{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given role.
func CreateUser(t testing.TB, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	u := &models.User{
		FullName: "Test " + email,
		Email:    email,
		Password: "x",
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// ProjectFixture describes a fixture project.
type ProjectFixture struct {
	Title     string
	Author    string
	Year      int
	Field     string
	CreatedAt time.Time
	Deleted   bool
}

// CreateProject inserts a project uploaded by uploaderID.
func CreateProject(t testing.TB, db *gorm.DB, uploaderID uint, fx ProjectFixture) *models.Project {
	t.Helper()

	if fx.CreatedAt.IsZero() {
		fx.CreatedAt = time.Now().UTC()
	}
	p := &models.Project{
		Title:      fx.Title,
		Author:     fx.Author,
		Year:       fx.Year,
		Field:      fx.Field,
		FileURL:    "https://example.com/" + uuid.NewString() + ".pdf",
		UploadedBy: uploaderID,
		Status:     models.ProjectStatusActive,
		CreatedAt:  fx.CreatedAt,
		UpdatedAt:  fx.CreatedAt,
	}
	if fx.Deleted {
		at := fx.CreatedAt
		p.Status = models.ProjectStatusDeleted
		p.DeletedAt = &at
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create project %q: %v", fx.Title, err)
	}
	return p
}

// Save links userID to projectID directly, bypassing the service layer.
func Save(t testing.TB, db *gorm.DB, userID, projectID uint) {
	t.Helper()

	if err := db.Create(&models.SavedProject{UserID: userID, ProjectID: projectID, CreatedAt: time.Now().UTC()}).Error; err != nil {
		t.Fatalf("save %d/%d: %v", userID, projectID, err)
	}
}
