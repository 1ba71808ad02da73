package auth

import (
	"fmt"

	"github.com/tawkr/tawkr-backend/internal/db"
	"github.com/tawkr/tawkr-backend/internal/sessions"
	"gorm.io/gorm"
)

// Init creates the users and sessions tables.
func Init(gdb *gorm.DB) error {
	if err := db.EnsureSchema(gdb, db.Schema); err != nil {
		return fmt.Errorf("ensure schema %s: %w", db.Schema, err)
	}

	if err := gdb.AutoMigrate(&User{}, &sessions.Session{}); err != nil {
		return fmt.Errorf("auto-migrate auth tables: %w", err)
	}
	return nil
}
