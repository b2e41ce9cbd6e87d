package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque identifier assigned by the workflow service.
// The service may encode it as a JSON number or a JSON string; both decode to the same ID.
type ID string

// IsZero reports whether the ID is unset, which marks a workflow as never saved.
func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) String() string {
	return string(id)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*id = ""

		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode id: %w", err)
		}

		*id = ID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to decode id: %w", err)
	}

	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("failed to decode id %s: not an integer", n)
	}

	*id = ID(n.String())

	return nil
}
