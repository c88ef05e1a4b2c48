package domain

import "fmt"

// Error types for consistent error handling across the pipeline.

// ErrParse indicates a malformed date or numeric field in an input table.
type ErrParse struct {
	Field string
	Value string
	Err   error
}

func (e *ErrParse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error on '%s' (%q): %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse error on '%s' (%q)", e.Field, e.Value)
}

func (e *ErrParse) Unwrap() error {
	return e.Err
}

// ErrLookup indicates an id referenced by the transcript is absent from the
// corresponding remapping table or cleaned table.
type ErrLookup struct {
	Resource string
	ID       string
}

func (e *ErrLookup) Error() string {
	return fmt.Sprintf("lookup error: %s id %q is not known", e.Resource, e.ID)
}

// ErrSchema indicates an event payload lacks the key its event type requires,
// or the event tag itself is unknown.
type ErrSchema struct {
	EventType EventType
	Key       string
	Message   string
}

func (e *ErrSchema) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("schema error [%s]: %s", e.EventType, e.Message)
	}
	return fmt.Sprintf("schema error [%s] key '%s': %s", e.EventType, e.Key, e.Message)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates an invalid or missing token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrBusy indicates no pipeline slot became free before the caller gave up.
type ErrBusy struct {
	Resource string
}

func (e *ErrBusy) Error() string {
	return fmt.Sprintf("%s is busy, retry later", e.Resource)
}
