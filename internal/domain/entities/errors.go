package entities

import (
	"errors"
	"fmt"
)

const InvalidCityMessage = "Please enter a valid city."

var (
	ErrCityRequired = ValidationError{Reason: "city required"}
	ErrInvalidCity  = ValidationError{Field: "city", Reason: InvalidCityMessage}
)

// ValidationError reports caller input that was rejected, either before any
// request was issued or in place of an upstream failure for a blank city.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// NetworkError means no response was received from the upstream.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UpstreamError means the upstream answered, but not with a usable forecast.
type UpstreamError struct {
	StatusCode int
	StatusText string
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return e.StatusText
	}
	return e.StatusText + ": " + e.Message
}

// UserMessage renders err the way it is shown to a person using the viewer.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Reason
	}

	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Error()
	}

	var networkErr *NetworkError
	if errors.As(err, &networkErr) {
		return networkErr.Error()
	}

	return err.Error()
}

func IsValidationError(err error) bool {
	var validationErr ValidationError
	return errors.As(err, &validationErr)
}

func IsNetworkError(err error) bool {
	var networkErr *NetworkError
	return errors.As(err, &networkErr)
}

func IsUpstreamError(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr)
}
