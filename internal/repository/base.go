// Package repository holds the GORM-backed data access layer.
package repository

import (
	"capsort/internal/database"

	"gorm.io/gorm"
)

// readDB returns the read replica when one is connected and primary is the
// process-wide connection. Injected handles (tests, tools) are used as-is.
func readDB(primary *gorm.DB) *gorm.DB {
	if primary != database.DB {
		return primary
	}
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}
