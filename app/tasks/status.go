package tasks

import (
	"sync"
	"time"
)

// Status tracks the outcome of the most recent pipeline runs for the API
// status surface. All methods are safe for concurrent use.
type Status struct {
	mu sync.RWMutex

	lastRunAt       time.Time
	lastRunOK       bool
	lastError       string
	lastDelivered   int
	totalDelivered  int
	latestVersion   int
	updateAvailable bool
	lastCheckedAt   time.Time
}

type StatusSnapshot struct {
	LastRunAt       time.Time `json:"last_run_at"`
	LastRunOK       bool      `json:"last_run_ok"`
	LastError       string    `json:"last_error,omitempty"`
	LastDelivered   int       `json:"last_delivered"`
	TotalDelivered  int       `json:"total_delivered"`
	LatestVersion   int       `json:"latest_version"`
	UpdateAvailable bool      `json:"update_available"`
	LastCheckedAt   time.Time `json:"last_update_check_at"`
}

func NewStatus() *Status {
	return &Status{}
}

func (s *Status) RecordRun(at time.Time, delivered int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRunAt = at
	s.lastRunOK = true
	s.lastError = ""
	s.lastDelivered = delivered
	s.totalDelivered += delivered
}

func (s *Status) RecordFailure(at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRunAt = at
	s.lastRunOK = false
	if err != nil {
		s.lastError = err.Error()
	}
	s.lastDelivered = 0
}

func (s *Status) RecordUpdateCheck(latestVersion int, available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestVersion = latestVersion
	s.updateAvailable = available
	s.lastCheckedAt = time.Now()
}

func (s *Status) Snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatusSnapshot{
		LastRunAt:       s.lastRunAt,
		LastRunOK:       s.lastRunOK,
		LastError:       s.lastError,
		LastDelivered:   s.lastDelivered,
		TotalDelivered:  s.totalDelivered,
		LatestVersion:   s.latestVersion,
		UpdateAvailable: s.updateAvailable,
		LastCheckedAt:   s.lastCheckedAt,
	}
}
