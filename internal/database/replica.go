package database

import (
	"sync"

	"gorm.io/gorm"
)

var (
	readMu sync.RWMutex
	readDB *gorm.DB
)

// SetReadDB registers the read replica used by repository reads.
func SetReadDB(db *gorm.DB) {
	readMu.Lock()
	defer readMu.Unlock()
	readDB = db
}

// GetReadDB returns the read replica, or nil when reads go to the primary.
func GetReadDB() *gorm.DB {
	readMu.RLock()
	defer readMu.RUnlock()
	return readDB
}
