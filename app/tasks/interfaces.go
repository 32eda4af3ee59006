package tasks

import "context"

// CalendarSource provides the remote calendar document and the published app
// version. Implemented by the gist client; faked in tests.
type CalendarSource interface {
	FetchDocument(ctx context.Context) ([]byte, error)
	LatestAppVersion(ctx context.Context) (int, error)
}

// TaskSchedulerInterface drives the background pipeline. Concurrent requests
// for the same task type are coalesced so at most one pipeline run is in
// flight at a time.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	TriggerRefresh() error
}
