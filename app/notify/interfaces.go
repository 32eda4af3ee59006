package notify

import "context"

// Sink delivers one rendered notification to a platform surface. A disabled
// sink is a silent no-op for the pipeline, never a failure.
type Sink interface {
	Name() string
	Enabled() bool
	Deliver(ctx context.Context, title, body string) error
}

// Deliverer is the pipeline-facing fan-out over the configured sinks.
type Deliverer interface {
	// Active reports whether at least one enabled sink exists. When false the
	// pipeline skips delivery entirely and leaves the ledger untouched.
	Active() bool
	Deliver(ctx context.Context, title, body string) error
}
