// Package mcp exposes the search engine over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"

	fatherrors "github.com/fathom-search/fathom/internal/errors"
)

// Custom MCP error codes.
const (
	// ErrCodeSearchUnavailable indicates every configured provider failed.
	ErrCodeSearchUnavailable = -32001

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts pipeline errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var fe *fatherrors.FathomError
	if errors.As(err, &fe) {
		return mapFathomError(fe)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// mapFathomError maps a pipeline error onto a JSON-RPC code by its code
// and category.
func mapFathomError(fe *fatherrors.FathomError) *MCPError {
	switch fe.Code {
	case fatherrors.ErrCodeAllProvidersDown:
		return &MCPError{
			Code:    ErrCodeSearchUnavailable,
			Message: "Search temporarily unavailable: all providers failed. Try again shortly.",
		}
	case fatherrors.ErrCodeProviderTimeout:
		return &MCPError{Code: ErrCodeTimeout, Message: fe.Message}
	}

	switch fe.Category {
	case fatherrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: fe.Message}
	case fatherrors.CategoryProvider:
		return &MCPError{Code: ErrCodeSearchUnavailable, Message: fe.Message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: fe.Message}
	}
}
