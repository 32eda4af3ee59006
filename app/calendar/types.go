package calendar

import "time"

const DateLayout = "2006-01-02"

// Event is one dated calendar entry as published in the gist payload.
// Events are rebuilt from scratch on every poll; identity across runs exists
// only through the notification id derived from them.
type Event struct {
	Date    time.Time // midnight-truncated
	DateKey string    // the yyyy-MM-dd key as it appeared in the payload
	Name    string
	Type    string
	Course  string
}

// Index maps a payload date key to its events, preserving array order.
type Index map[string][]Event

type Tier int

const (
	TierDueToday Tier = iota
	TierDueTomorrow
	TierDueInDays
)

// Candidate is an event inside the notice window that has not yet been
// delivered on the current firing day.
type Candidate struct {
	Event          Event
	Tier           Tier
	DaysLeft       int
	Title          string
	Body           string
	NotificationID string
}

// Ledger is the dedup read side consulted during evaluation.
type Ledger interface {
	Contains(id string) (bool, error)
}
