// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"errors"
	"strconv"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeInvalidResponse
	ErrTypeServer
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeServer:
		return "server"
	default:
		return "unknown"
	}
}

// ClientError represents an error talking to the backend.
type ClientError struct {
	Type ErrorType
	// Status is the HTTP status code for server errors, otherwise 0.
	Status  int
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = "status " + strconv.Itoa(e.Status) + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeConnection, Message: "backend is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnhealthy   = &ClientError{Type: ErrTypeInvalidResponse, Message: "backend reported unhealthy status"}
)

func errorType(err error) ErrorType {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type
	}
	return ErrTypeUnknown
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return errorType(err) == ErrTypeTimeout
}

// IsUnreachable checks if an error indicates the backend could not be reached.
func IsUnreachable(err error) bool {
	return errorType(err) == ErrTypeConnection
}

// IsServerError checks if the backend answered with a non-success status.
func IsServerError(err error) bool {
	return errorType(err) == ErrTypeServer
}
