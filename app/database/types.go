package database

import (
	"time"
)

// Notification is one ledger row: a notification id that has been delivered,
// keyed by event date, name, type and the firing day. Ids are opaque to the
// store; adding fields to events changes future ids without invalidating
// existing rows.
type Notification struct {
	ID        string
	FiredOn   string // yyyy-MM-dd firing day, drives retention eviction
	CreatedAt time.Time
}
