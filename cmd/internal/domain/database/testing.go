package database

import (
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var memSeq atomic.Int64

// OpenMemory returns a migrated, private in-memory SQLite store.
func OpenMemory() (*gorm.DB, error) {
	name := fmt.Sprintf("file:docbook_%d?mode=memory&cache=shared&_foreign_keys=on", memSeq.Add(1))
	db, err := Open(sqlite.Open(name))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}
