package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

var emptyObject = json.RawMessage(`{}`)

// JSON is a syntactically valid JSON document, parsed once at the boundary
// where user text enters the system.
type JSON struct {
	raw json.RawMessage
}

// EmptyObject returns the JSON document {}.
func EmptyObject() JSON {
	return JSON{raw: emptyObject}
}

// ParseJSON parses text as any JSON value. Blank text yields {}.
func ParseJSON(text string) (JSON, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return EmptyObject(), nil
	}

	if !json.Valid([]byte(trimmed)) {
		return JSON{}, newValidationError("ParseJSON", "text is not valid JSON", ErrInvalidInput)
	}

	return JSON{raw: json.RawMessage(trimmed)}, nil
}

// ParseJSONObject is ParseJSON restricted to JSON objects.
func ParseJSONObject(text string) (JSON, error) {
	doc, err := ParseJSON(text)
	if err != nil {
		return JSON{}, err
	}

	if !doc.IsObject() {
		return JSON{}, newValidationError("ParseJSONObject", "text must be a JSON object", ErrInvalidInput)
	}

	return doc, nil
}

// MustJSON builds a JSON document from a Go value, panicking when it cannot be encoded.
func MustJSON(v any) JSON {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("failed to encode JSON document: %w", err))
	}

	return JSON{raw: data}
}

// IsZero reports whether the document is unset.
func (j JSON) IsZero() bool {
	return len(j.raw) == 0
}

// IsObject reports whether the document is a JSON object.
func (j JSON) IsObject() bool {
	return len(j.raw) > 0 && j.raw[0] == '{'
}

// Decode unmarshals the document into v.
func (j JSON) Decode(v any) error {
	if j.IsZero() {
		return json.Unmarshal(emptyObject, v)
	}

	return json.Unmarshal(j.raw, v)
}

func (j JSON) String() string {
	if j.IsZero() {
		return ""
	}

	return string(j.raw)
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j.IsZero() {
		return []byte("null"), nil
	}

	return j.raw, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		j.raw = nil

		return nil
	}

	if !json.Valid(data) {
		return newValidationError("JSON.UnmarshalJSON", "document is not valid JSON", ErrInvalidInput)
	}

	j.raw = append(json.RawMessage(nil), data...)

	return nil
}
