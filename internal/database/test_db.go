package database

import (
	"license-validation-service/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// OpenTest returns an in-memory database for tests. Shared cache keeps
// the pool's connections on one database; the database is destroyed
// when CleanTest closes the last connection.
func OpenTest() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect test database")
	}

	if err := db.AutoMigrate(&model.License{}); err != nil {
		panic("failed to migrate test database")
	}

	return db
}

// CleanTest closes the underlying pool of a test database.
func CleanTest(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
