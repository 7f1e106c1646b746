package models

import "gorm.io/gorm"

// AllModels lists every model managed by AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&POHeaderModel{},
		&POLineModel{},
	}
}

// AutoMigrate creates or updates the tables, indexes and constraints
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
