package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a network-related error that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "fetch", "read", "write")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// RemoteError is returned when the rate provider answers with a non-200 status.
// Throttling and server-side failures are retriable, anything else is not.
type RemoteError struct {
	Date       DateKey
	StatusCode int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("rate provider returned status %d for %s", e.StatusCode, e.Date)
}

func (e *RemoteError) IsRetriable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// InvalidParameterError reports a user-supplied parameter that was replaced by a default.
// It is never fatal: the accompanying value is always usable.
type InvalidParameterError struct {
	Name     string
	Value    string
	Fallback int
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid value %q for %s, using default %d", e.Value, e.Name, e.Fallback)
}

func (e *InvalidParameterError) IsRetriable() bool {
	return false
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrEmptyResponse is returned when the provider answers 200 without an exchangeRate list
	ErrEmptyResponse = errors.New("empty response from rate provider")

	// ErrPeerClosed is returned when writing to a peer that is already unregistered
	ErrPeerClosed = errors.New("peer connection closed")
)
