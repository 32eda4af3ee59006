package database

// LedgerRepository is the durable dedup set of delivered notification ids.
// Additions are batched: the pipeline collects delivered ids in memory and
// persists them once per run via Flush.
type LedgerRepository interface {
	Contains(id string) (bool, error)

	// Flush atomically records the given ids under firedOn and evicts rows
	// whose firing day precedes retainAfter (both yyyy-MM-dd). Either the
	// whole batch lands or none of it does.
	Flush(ids []string, firedOn string, retainAfter string) error

	GetCount() (int, error)
	GetRecent(limit int) ([]Notification, error)
}
