package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/shipdash/internal/domain/activity"
	"github.com/ganot/shipdash/internal/domain/order"
	"github.com/ganot/shipdash/internal/domain/workclock"
	"github.com/ganot/shipdash/internal/odoo"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to INTERNAL.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var remote *odoo.RemoteCallError
	switch {
	case errors.Is(err, order.ErrNoWebsites):
		return &APIError{Code: "NO_WEBSITES", Message: "no websites found", RecoveryHint: "Check the configured website names"}
	case errors.Is(err, order.ErrInvalidQuery):
		return &APIError{Code: "INVALID_QUERY", Message: err.Error(), RecoveryHint: "Use on-time, moderate or delayed"}
	case errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_QUERY", Message: err.Error(), RecoveryHint: "Use fetch_succeeded or fetch_failed"}
	case errors.Is(err, workclock.ErrInvalidTimestamp):
		return &APIError{Code: "INVALID_TIMESTAMP", Message: err.Error(), RecoveryHint: "Use DD/MM/YYYY, hh:mm:ss a.m. or RFC 3339"}
	case errors.Is(err, odoo.ErrAuthentication):
		return &APIError{Code: "ERP_AUTH_FAILED", Message: err.Error(), RecoveryHint: "Check the ERP credentials"}
	case errors.As(err, &remote):
		return &APIError{Code: "ERP_UNAVAILABLE", Message: remote.Error(), RecoveryHint: "Retry later"}
	default:
		return &APIError{Code: "INTERNAL", Message: "internal error"}
	}
}
