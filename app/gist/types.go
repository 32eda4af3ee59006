package gist

import "fmt"

// envelope is the gist container returned by the GitHub API. The calendar
// payload is not the response itself: it sits inside the named file's
// "content" field as an embedded JSON string, so callers always decode twice.
type envelope struct {
	Files map[string]envelopeFile `json:"files"`
}

type envelopeFile struct {
	Content string `json:"content"`
}

type ErrorKind int

const (
	ErrorNetwork ErrorKind = iota
	ErrorTimeout
	ErrorHTTPStatus
)

// FetchError classifies a failed gist fetch. Callers treat any fetch error
// as "no data this cycle"; retry policy lives in the scheduler.
type FetchError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case ErrorTimeout:
		return fmt.Sprintf("gist fetch timed out: %v", e.Err)
	case ErrorHTTPStatus:
		return fmt.Sprintf("gist fetch returned HTTP %d", e.Status)
	default:
		return fmt.Sprintf("gist fetch failed: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
