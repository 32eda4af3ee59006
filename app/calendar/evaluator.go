package calendar

import (
	"fmt"
	"sort"
	"time"
)

// NoticeDays is the lead-time window: events due within this many days of the
// firing day are eligible for notification.
const NoticeDays = 3

type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Run returns the events due within the notice window that the ledger has not
// seen on this firing day. Dates are walked in sorted key order for stable
// logs; delivery order across dates is not part of the contract. Within one
// date, payload array order is preserved.
func (e *Evaluator) Run(index Index, today time.Time, ledger Ledger) ([]Candidate, error) {
	today = Midnight(today)
	firingDay := today.Format(DateLayout)

	dateKeys := make([]string, 0, len(index))
	for k := range index {
		dateKeys = append(dateKeys, k)
	}
	sort.Strings(dateKeys)

	var candidates []Candidate
	for _, dateKey := range dateKeys {
		events := index[dateKey]
		if len(events) == 0 {
			continue
		}

		diffDays := daysBetween(today, Midnight(events[0].Date))
		if diffDays < 0 || diffDays > NoticeDays {
			continue
		}

		for _, event := range events {
			id := fmt.Sprintf("%s_%s_%s_%s", event.DateKey, event.Name, event.Type, firingDay)

			seen, err := ledger.Contains(id)
			if err != nil {
				return nil, fmt.Errorf("failed to consult ledger: %w", err)
			}
			if seen {
				continue
			}

			tier, title, body := render(event, diffDays)
			candidates = append(candidates, Candidate{
				Event:          event,
				Tier:           tier,
				DaysLeft:       diffDays,
				Title:          title,
				Body:           body,
				NotificationID: id,
			})
		}
	}

	return candidates, nil
}

func render(event Event, diffDays int) (Tier, string, string) {
	var tier Tier
	var prefix, label string

	switch diffDays {
	case 0:
		tier = TierDueToday
		prefix = "Urgent! "
		label = "Today!"
	case 1:
		tier = TierDueTomorrow
		prefix = "Important: "
		label = "Tomorrow"
	default:
		tier = TierDueInDays
		prefix = "Reminder: "
		label = fmt.Sprintf("In %d days", diffDays)
	}

	detail := event.Course
	if detail == "" {
		detail = event.Type
	}

	return tier, prefix + event.Name, fmt.Sprintf("%s - %s", label, detail)
}

// Midnight truncates a time to the start of its day in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b. Both are mapped to UTC
// dates first so DST transitions cannot skew the division.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}
