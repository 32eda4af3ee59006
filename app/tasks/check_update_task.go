package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// CheckUpdateTask compares the published appVersion against the running build
// number and records the result for the status surface. Downloading and
// installing a newer build is the host platform's job, not the agent's.
type CheckUpdateTask struct {
	Task
	source      CalendarSource
	status      *Status
	buildNumber int
}

func NewCheckUpdateTask(source CalendarSource, status *Status, buildNumber int) *CheckUpdateTask {
	return &CheckUpdateTask{
		Task:        NewTask(TaskTypeCheckUpdate),
		source:      source,
		status:      status,
		buildNumber: buildNumber,
	}
}

func (t *CheckUpdateTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	latest, err := t.source.LatestAppVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch latest app version: %w", err)
	}

	available := latest > t.buildNumber
	t.status.RecordUpdateCheck(latest, available)

	if available {
		slog.Info("Update available", "current", t.buildNumber, "latest", latest)
	} else {
		slog.Debug("App is up to date", "current", t.buildNumber, "latest", latest)
	}

	return nil
}
