// Package http serves the ledger JSON API.
//
// This file implements a small builder for the response envelope shared by
// every endpoint: {success, data, meta, error}.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ledger/internal/core"
	ledgerlog "ledger/internal/log"
	"ledger/internal/validate"
)

// Error codes carried in the envelope.
const (
	CodeValidation  = "VALIDATION"
	CodeNotFound    = "NOT_FOUND"
	CodeServerError = "SERVER_ERROR"
	CodeRateLimited = "RATE_LIMITED"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Meta    any        `json:"meta,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Details []validate.Violation `json:"details,omitempty"`
}

// PageMeta accompanies paginated listings.
type PageMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// ResponseBuilder provides a fluent API for building envelope responses.
type ResponseBuilder struct {
	statusCode int
	envelope   Envelope
	headers    map[string]string
}

// NewResponse creates a successful response with a 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		envelope:   Envelope{Success: true},
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Data(v any) *ResponseBuilder {
	b.envelope.Data = v
	return b
}

func (b *ResponseBuilder) Meta(v any) *ResponseBuilder {
	b.envelope.Meta = v
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.envelope); err != nil {
		slog.Error("Failed to encode response", "error", err, "status", b.statusCode)
	}
}

// ErrorResponse creates a failed response with the given status and code.
func ErrorResponse(statusCode int, code, message string) *ResponseBuilder {
	b := NewResponse().Status(statusCode)
	b.envelope.Success = false
	b.envelope.Error = &ErrorBody{Code: code, Message: message}
	return b
}

// ValidationError creates a 400 response listing every violation.
func ValidationError(verr *validate.Error) *ResponseBuilder {
	msg := "invalid request"
	if len(verr.Violations) == 1 {
		v := verr.Violations[0]
		msg = v.Message
		if v.Field != "" {
			msg = v.Field + " " + v.Message
		}
	}
	b := ErrorResponse(http.StatusBadRequest, CodeValidation, msg)
	b.envelope.Error.Details = verr.Violations
	return b
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, message)
}

// ServerError creates a 500 response. The message never includes internal detail.
func ServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeServerError, message)
}

// writeError maps a service error onto the envelope. Unexpected errors are
// logged and reported with the generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if verr, ok := validate.AsError(err); ok {
		ValidationError(verr).Write(w)
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		NotFoundError(err.Error()).Write(w)
		return
	}
	fields := ledgerlog.NewFields().
		WithError(err).
		WithHTTPRequest(r.Method, r.URL.Path)
	ledgerlog.FromContext(r.Context()).ErrorContext(r.Context(), message, fields.ToSlice()...)
	ServerError(message).Write(w)
}
