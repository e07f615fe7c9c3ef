package sinks

import (
	"time"

	"snake-arena/server/logging"
)

// Record is the serialised form shared by the file and database sinks.
type Record struct {
	Type     string              `json:"type"`
	Tick     uint64              `json:"tick"`
	Time     string              `json:"time"`
	Severity string              `json:"severity"`
	Category string              `json:"category,omitempty"`
	Actor    logging.EntityRef   `json:"actor"`
	Targets  []logging.EntityRef `json:"targets,omitempty"`
	Payload  any                 `json:"payload,omitempty"`
	Extra    map[string]any      `json:"extra,omitempty"`
}

// NewRecord flattens an event into its wire form.
func NewRecord(event logging.Event) Record {
	return Record{
		Type:     string(event.Type),
		Tick:     event.Tick,
		Time:     eventTime(event).Format(time.RFC3339Nano),
		Severity: event.Severity.String(),
		Category: event.Category,
		Actor:    event.Actor,
		Targets:  event.Targets,
		Payload:  event.Payload,
		Extra:    event.Extra,
	}
}

func eventTime(event logging.Event) time.Time {
	if event.Time.IsZero() {
		return time.Now().UTC()
	}
	return event.Time.UTC()
}
