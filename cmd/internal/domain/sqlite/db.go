package sqlite

import (
	"fmt"
	"notifyflow/cmd/internal/domain/entity"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens (or creates) the database at path and migrates every table.
// Use ":memory:" for throwaway databases in tests.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Event{},
		&entity.Notification{},
		&entity.SystemLog{},
		&entity.Connection{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and SQLite writes serialized
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
