package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open bootstraps the SQLite database at dbPath. Plain file paths get WAL
// journaling and a busy timeout so decision traffic and admin queries can
// share the file without lock errors; a DSN with its own parameters is
// passed through untouched.
func Open(dbPath string) (*gorm.DB, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	return db, nil
}
