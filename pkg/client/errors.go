package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/moogar0880/problems"
)

var (
	// ErrTransport indicates the service was unreachable or answered with a non-2xx status.
	ErrTransport = errors.New("transport failure")

	// ErrNotFound indicates the service answered 404 for the addressed resource.
	ErrNotFound = errors.New("resource not found")
)

// TransportError carries the request that failed and whatever the service said about it.
type TransportError struct {
	Op         string // Client operation, e.g. "GetWorkflow"
	Method     string
	Path       string
	StatusCode int    // Zero when no response was received
	Message    string // Problem detail, problem title or raw body
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.Path, e.Err)
	}

	if e.Message != "" {
		return fmt.Sprintf("%s: %s %s: status %d: %s", e.Op, e.Method, e.Path, e.StatusCode, e.Message)
	}

	return fmt.Sprintf("%s: %s %s: status %d", e.Op, e.Method, e.Path, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	if errors.Is(e.Err, target) {
		return true
	}

	// every not-found response is also a transport failure
	return target == ErrTransport && errors.Is(e.Err, ErrNotFound)
}

// IsNotFound checks if an error indicates the addressed resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransportError checks if an error came from talking to the service.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode
	}

	return 0
}

func newStatusError(op, method, path string, status int, body []byte) *TransportError {
	kind := ErrTransport
	if status == http.StatusNotFound {
		kind = ErrNotFound
	}

	return &TransportError{
		Op:         op,
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    problemMessage(status, body),
		Err:        kind,
	}
}

// problemMessage extracts a readable message from an RFC 7807 body, falling back to the raw text.
func problemMessage(status int, body []byte) string {
	var problem problems.Problem

	if err := json.Unmarshal(body, &problem); err == nil {
		if problem.Detail != "" {
			return problem.Detail
		}

		if problem.Title != "" {
			return problem.Title
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	return http.StatusText(status)
}
