package database

import (
	"path/filepath"
	"sync/atomic"
	"time"

	"emperror.dev/errors"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/priyxstudio/pub/internal/models"
)

// FileName is the name of the database file inside the data directory.
const FileName = "pub.db"

var (
	initialized atomic.Bool
	db          *gorm.DB
)

// Initialize opens the database in dir and migrates it. It may only be called
// once during the lifetime of the process.
func Initialize(dir string) error {
	if !initialized.CompareAndSwap(false, true) {
		panic("database: attempt to initialize more than once during application lifecycle")
	}
	instance, err := Open(filepath.Join(dir, FileName))
	if err != nil {
		return err
	}
	db = instance
	return nil
}

// Open opens (creating if needed) the SQLite database at path and migrates
// it. Pass ":memory:" for a throwaway database.
func Open(path string) (*gorm.DB, error) {
	instance, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "database: could not open database file")
	}
	sql, err := instance.DB()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	sql.SetMaxOpenConns(1)
	sql.SetConnMaxLifetime(time.Hour)
	if tx := instance.Exec("PRAGMA synchronous = NORMAL"); tx.Error != nil {
		return nil, errors.WithStack(tx.Error)
	}
	if tx := instance.Exec("PRAGMA journal_mode = WAL"); tx.Error != nil {
		return nil, errors.WithStack(tx.Error)
	}
	if err := instance.AutoMigrate(&models.Module{}); err != nil {
		return nil, errors.WithStack(err)
	}
	return instance, nil
}

// Instance returns the database opened by Initialize.
func Instance() *gorm.DB {
	if db == nil {
		panic("database: attempt to access instance before initialized")
	}
	return db
}
