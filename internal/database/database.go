package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sparechange679/toll-collection-system-sub001/config"
)

var DB *gorm.DB

// Connect opens the primary database. Postgres when DB_HOST is configured,
// otherwise a local pure-Go sqlite file so the service runs without external
// infrastructure (development, staging demos).
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.DBHost != "" {
		dialector = postgres.Open(cfg.DSN())
	} else {
		dialector = sqlite.Open("toll.db")
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}
