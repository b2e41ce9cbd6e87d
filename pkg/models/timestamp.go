package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// localTimestampLayouts are accepted for services that serialize timestamps without a zone offset.
// Such values are interpreted as UTC.
var localTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a point in time as exchanged with the workflow service.
type Timestamp struct {
	time.Time
}

// NewTimestamp returns a pointer to a Timestamp for t, truncated to millisecond precision.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode timestamp: %w", err)
	}

	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}

	t.Time = parsed

	return nil
}

// ParseTimestamp accepts RFC 3339 values and zone-less ISO-8601 local date-times.
func ParseTimestamp(raw string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return parsed.UTC(), nil
	}

	for _, layout := range localTimestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("failed to decode timestamp %q", raw)
}

// LaterTimestamp returns the later of a and b. A nil timestamp is earlier than any other.
func LaterTimestamp(a, b *Timestamp) *Timestamp {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(a.Time):
		return b
	default:
		return a
	}
}
