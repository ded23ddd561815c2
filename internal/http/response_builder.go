// Package http serves the JSON API over the reconciliation and writer
// services.
//
// This file implements the builder for JSON responses and the mapping from
// domain errors to status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"lifeledger/internal/core"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	// Partial recurrence details.
	FailedIndex *int     `json:"failed_index,omitempty"`
	Total       int      `json:"total,omitempty"`
	GroupID     string   `json:"group_id,omitempty"`
	InsertedIDs []string `json:"inserted_ids,omitempty"`
}

// ErrorResponse creates an error response with a machine readable code.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message, Code: code})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, "bad_request", message)
}

// InternalServerError creates a 500 Internal Server Error response. The
// cause is logged, never returned.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal", "internal error")
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed").
		Header("Allow", allowedMethods)
}

// DomainError maps a service error to its response. ok is false for errors
// with no domain meaning, which callers answer with a 500.
func DomainError(err error) (resp *JSONResponseBuilder, ok bool) {
	var partial *core.PartialRecurrenceError
	switch {
	case errors.As(err, &partial):
		idx := partial.Index
		return NewJSONResponse().Status(http.StatusMultiStatus).Body(errorBody{
			Error:       err.Error(),
			Code:        "partial_recurrence",
			FailedIndex: &idx,
			Total:       partial.Total,
			GroupID:     partial.GroupID,
			InsertedIDs: partial.InsertedIDs,
		}), true
	case errors.Is(err, core.ErrReadOnlySource):
		return ErrorResponse(http.StatusConflict, "read_only_source", err.Error()), true
	case errors.Is(err, core.ErrInvalidDate):
		return ErrorResponse(http.StatusBadRequest, "invalid_date", err.Error()), true
	case errors.Is(err, core.ErrUnknownWriteRoute):
		return ErrorResponse(http.StatusUnprocessableEntity, "unknown_write_route", err.Error()), true
	case errors.Is(err, core.ErrNotFound):
		return ErrorResponse(http.StatusNotFound, "not_found", err.Error()), true
	default:
		return nil, false
	}
}
