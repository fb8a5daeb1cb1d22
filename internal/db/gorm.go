package db

import (
	"fmt"

	"github.com/taskdesk/apiserver/internal/store/gormstore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm opens a sqlite database through gorm and migrates the schema.
func OpenGorm(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers; one connection also keeps in-memory databases shared.
	sqlDB.SetMaxOpenConns(1)

	if err := gormstore.AutoMigrate(gdb); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return gdb, nil
}
