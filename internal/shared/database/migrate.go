package database

import (
	"clubtrips/internal/bookings"
	"clubtrips/internal/events"

	"gorm.io/gorm"
)

// Migrate creates the catalog and ledger tables, then the indexes that
// enforce one active booking per user and event.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&events.Event{},
		&bookings.Booking{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
