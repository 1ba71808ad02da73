package db

import "gorm.io/gorm"

// Schema holds every tawkr table.
const Schema = "tawkr"

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}
