package domain

import (
	"fmt"
	"time"
)

// DashboardError represents a standardized API error response
type DashboardError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *DashboardError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrDataUnavailable  = "DATA_UNAVAILABLE"
	ErrInvalidSelection = "INVALID_SELECTION"
	ErrInvalidInput     = "INVALID_INPUT"
	ErrRateLimit        = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
)

// NewDashboardError creates a new DashboardError with timestamp
func NewDashboardError(code, message, details, requestID string) *DashboardError {
	return &DashboardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// DataUnavailableError reports that the data source could not supply a dataset
type DataUnavailableError struct {
	Source string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable from %s: %v", e.Source, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// NewDataUnavailableError wraps a source failure
func NewDataUnavailableError(source string, err error) *DataUnavailableError {
	return &DataUnavailableError{Source: source, Err: err}
}

// OutOfRangeError reports a selection index outside the clinician roster
type OutOfRangeError struct {
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("selection index %d out of range [0, %d)", e.Index, e.Len)
}
