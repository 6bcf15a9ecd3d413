package models

import "gorm.io/gorm"

// AutoMigrate creates the tables this service reads and writes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Alert{}, &GroupMembership{})
}
