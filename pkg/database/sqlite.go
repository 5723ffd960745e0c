package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openSQLite backs local development and the test suite. SQLite allows a single
// writer, so callers inside a transaction must only use the tx handle.
func openSQLite(dsn string, l logger.Interface) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "cafe-pos.db"
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: l})
}

// OpenMemory returns an isolated in-memory database with every model migrated.
func OpenMemory(name string, models ...interface{}) (*gorm.DB, error) {
	db, err := Connect(Options{
		Driver:       "sqlite",
		DSN:          "file:" + name + "?mode=memory&cache=shared",
		LogLevel:     logger.Silent,
		MaxOpenConns: 1,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	return db, nil
}
