package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chriskh369/studyhub-agent/app/calendar"
	"github.com/chriskh369/studyhub-agent/app/database"
	"github.com/chriskh369/studyhub-agent/app/notify"
)

// ProcessCalendarTask is one full pipeline run: fetch the gist document,
// parse the calendar, evaluate the notice window against the ledger, deliver
// what's new, and flush the delivered ids in a single batch.
type ProcessCalendarTask struct {
	Task
	source        CalendarSource
	ledger        database.LedgerRepository
	sinks         notify.Deliverer
	status        *Status
	parser        *calendar.Parser
	evaluator     *calendar.Evaluator
	retentionDays int
	now           func() time.Time
}

func NewProcessCalendarTask(source CalendarSource, ledger database.LedgerRepository,
	sinks notify.Deliverer, status *Status, retentionDays int, now func() time.Time) *ProcessCalendarTask {
	if now == nil {
		now = time.Now
	}
	return &ProcessCalendarTask{
		Task:          NewTask(TaskTypeProcessCalendar),
		source:        source,
		ledger:        ledger,
		sinks:         sinks,
		status:        status,
		parser:        calendar.NewParser(),
		evaluator:     calendar.NewEvaluator(),
		retentionDays: retentionDays,
		now:           now,
	}
}

func (t *ProcessCalendarTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.source.FetchDocument(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch calendar document: %w", err)
	}

	index, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse calendar document: %w", err)
	}

	today := calendar.Midnight(t.now())

	candidates, err := t.evaluator.Run(index, today, t.ledger)
	if err != nil {
		return fmt.Errorf("failed to evaluate calendar: %w", err)
	}

	var delivered []string
	if t.sinks.Active() {
		for _, c := range candidates {
			if err := t.sinks.Deliver(ctx, c.Title, c.Body); err != nil {
				// Undelivered ids stay out of the ledger so the event remains
				// eligible on the next cycle.
				slog.Warn("Notification delivery failed", "id", c.NotificationID, "error", err)
				continue
			}
			delivered = append(delivered, c.NotificationID)
		}
	} else if len(candidates) > 0 {
		slog.Info("No enabled sinks, skipping delivery", "candidates", len(candidates))
	}

	if len(delivered) > 0 {
		firedOn := today.Format(calendar.DateLayout)
		retainAfter := today.AddDate(0, 0, -t.retentionDays).Format(calendar.DateLayout)

		if err := t.ledger.Flush(delivered, firedOn, retainAfter); err != nil {
			return fmt.Errorf("failed to flush ledger: %w", err)
		}
	}

	t.status.RecordRun(t.now(), len(delivered))

	slog.Info("Task completed",
		"type", "ProcessCalendar",
		"duration", t.GetDuration(),
		"dates", len(index),
		"candidates", len(candidates),
		"delivered", len(delivered))

	return nil
}
