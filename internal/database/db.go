package database

import (
	"fmt"
	"os"
	"path/filepath"

	"license-validation-service/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Open creates the data directory if needed, opens the sqlite database
// at path and migrates the license table. The returned handle owns the
// connection pool; callers pass it down explicitly.
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&model.License{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}
