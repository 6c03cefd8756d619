// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apperr defines the error taxonomy shared by every pipeline stage.
// Callers classify failures with errors.Is against the sentinels; the typed
// errors carry the detail.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConfiguration indicates a missing or invalid credential or setting.
	ErrConfiguration = errors.New("configuration error")

	// ErrUpstream indicates a failed or malformed response from an external service.
	ErrUpstream = errors.New("upstream service error")

	// ErrMissingField indicates a record lacks a field a formatter requires.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidRequest indicates caller input failed validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// ConfigurationError reports a setting that must be supplied before any
// network call is made.
type ConfigurationError struct {
	Setting string
	Hint    string
}

func (e *ConfigurationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("configuration error: %s is not set (%s)", e.Setting, e.Hint)
	}
	return fmt.Sprintf("configuration error: %s is not set", e.Setting)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Configuration returns a ConfigurationError for setting.
func Configuration(setting, hint string) error {
	return &ConfigurationError{Setting: setting, Hint: hint}
}

// UpstreamError represents a failure reported by, or caused by the response
// of, an external service.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned HTTP %d: %s", e.Service, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Service, msg)
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream returns an UpstreamError with a formatted message.
func Upstream(service string, statusCode int, format string, args ...any) error {
	return &UpstreamError{Service: service, StatusCode: statusCode, Message: fmt.Sprintf(format, args...)}
}

// WrapUpstream attributes err to service.
func WrapUpstream(service, message string, err error) error {
	return &UpstreamError{Service: service, Message: message, Err: err}
}

// MissingFieldError reports a record field that was absent or malformed.
type MissingFieldError struct {
	Field  string
	Record string
}

func (e *MissingFieldError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("missing required field %q in %s", e.Field, e.Record)
	}
	return fmt.Sprintf("missing required field %q", e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// MissingField returns a MissingFieldError for field.
func MissingField(field, record string) error {
	return &MissingFieldError{Field: field, Record: record}
}

// HTTPStatus maps an error to the status code the HTTP shell reports.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstream), errors.Is(err, ErrMissingField):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
