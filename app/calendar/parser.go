package calendar

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

type eventJSON struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Course string `json:"course"`
}

// Run decodes the unwrapped calendar payload into an Index. A missing
// "calendar" field yields an empty index, not an error. A date key that fails
// to parse, or a date whose event array is malformed, is logged and skipped
// so the rest of the document still gets processed.
func (p *Parser) Run(data []byte) (Index, error) {
	var payload struct {
		Calendar map[string]json.RawMessage `json:"calendar"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse calendar payload: %w", err)
	}

	index := make(Index, len(payload.Calendar))
	if payload.Calendar == nil {
		slog.Debug("No calendar data found in payload")
		return index, nil
	}

	for dateKey, raw := range payload.Calendar {
		date, err := time.ParseInLocation(DateLayout, dateKey, time.Local)
		if err != nil {
			slog.Warn("Skipping unparsable date key", "key", dateKey, "error", err)
			continue
		}

		var rawEvents []eventJSON
		if err := json.Unmarshal(raw, &rawEvents); err != nil {
			slog.Warn("Skipping malformed event list", "date", dateKey, "error", err)
			continue
		}

		events := make([]Event, 0, len(rawEvents))
		for _, re := range rawEvents {
			name := re.Name
			if name == "" {
				name = "Event"
			}
			events = append(events, Event{
				Date:    date,
				DateKey: dateKey,
				Name:    name,
				Type:    re.Type,
				Course:  re.Course,
			})
		}

		index[dateKey] = events
	}

	return index, nil
}
