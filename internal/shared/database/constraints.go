package database

import (
	"clubtrips/internal/bookings"

	"gorm.io/gorm"
)

// constraintStatements are idempotent so they can run on every start
var constraintStatements = []string{
	// At most one non-cancelled booking per (user, event)
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + bookings.ConstraintActivePerUserEvent + `
		ON booking_tickets (user_id, event_id)
		WHERE status <> 'cancelled'`,

	`CREATE INDEX IF NOT EXISTS idx_booking_tickets_event_status
		ON booking_tickets (event_id, status)`,

	`ALTER TABLE booking_tickets DROP CONSTRAINT IF EXISTS chk_booking_tickets_status`,
	`ALTER TABLE booking_tickets ADD CONSTRAINT chk_booking_tickets_status
		CHECK (status IN ('pending', 'confirmed', 'accepted', 'cancelled'))`,

	`ALTER TABLE booking_tickets DROP CONSTRAINT IF EXISTS chk_booking_tickets_attendees`,
	`ALTER TABLE booking_tickets ADD CONSTRAINT chk_booking_tickets_attendees
		CHECK (attendees >= 1)`,
}

// MigrateConstraints adds the database constraints the booking ledger relies on
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
