package api

import (
	"errors"
	"fmt"

	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/transport"
)

// Error codes carried in the data of JSON-RPC error responses.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeConflict         = "CONFLICT"
	CodeInternal         = transport.CodeInternal
)

// APIError represents an error response with a stable code.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to API error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: CodeNotFound, Message: "project not found", RecoveryHint: "Reload the project list"}
	case errors.Is(err, project.ErrActivityConflict):
		return &APIError{Code: CodeConflict, Message: err.Error(), RecoveryHint: "Remove the activity from its current project first"}
	case errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: CodeValidationFailed, Message: err.Error()}
	default:
		return nil
	}
}
