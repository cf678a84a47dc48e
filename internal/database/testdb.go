package database

import (
	"database/sql"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTest opens a migrated in-memory SQLite database. Every in-memory
// connection is its own database, so the pool is pinned to a single
// connection.
func OpenTest() (*gorm.DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	gdb, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        ":memory:",
		Conn:       sqlDB,
	}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}
	return gdb, nil
}
