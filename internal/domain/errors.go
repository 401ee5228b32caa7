package domain

import "fmt"

// Error types for consistent error handling across the BFA.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure while reaching the page source.
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

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
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

// ErrPayload indicates a page payload could not be decoded.
// The engine treats such a dataset as absent.
type ErrPayload struct {
	Dataset DatasetName
	Err     error
}

func (e *ErrPayload) Error() string {
	return fmt.Sprintf("payload %s: %v", e.Dataset, e.Err)
}

func (e *ErrPayload) Unwrap() error {
	return e.Err
}

// ErrEmptyChart indicates a chart in its empty state was sent to a renderer.
type ErrEmptyChart struct {
	Slot    ChartSlot
	Message string
}

func (e *ErrEmptyChart) Error() string {
	return fmt.Sprintf("chart %s has no data: %s", e.Slot, e.Message)
}
