// Package response defines the uniform JSON envelope returned by every endpoint.
package response

import (
	"net/http"
	"sort"

	"smartshop/internal/core/apperror"
)

// ErrorDetail describes one problem with the request.
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Envelope is the response body shape: {success, message, data, errors, statusCode}.
type Envelope[T any] struct {
	Success    bool          `json:"success"`
	Message    string        `json:"message,omitempty"`
	Data       T             `json:"data,omitempty"`
	Errors     []ErrorDetail `json:"errors,omitempty"`
	StatusCode int           `json:"statusCode"`
}

// OK builds a 200 envelope.
func OK[T any](data T, message string) Envelope[T] {
	return Envelope[T]{Success: true, Message: message, Data: data, StatusCode: http.StatusOK}
}

// Created builds a 201 envelope.
func Created[T any](data T, message string) Envelope[T] {
	return Envelope[T]{Success: true, Message: message, Data: data, StatusCode: http.StatusCreated}
}

// Fail builds a failure envelope for an arbitrary status.
func Fail(status int, message string, errs ...ErrorDetail) Envelope[any] {
	return Envelope[any]{Success: false, Message: message, Errors: errs, StatusCode: status}
}

// FromError maps an error to a failure envelope.
// Persistence and internal causes are never copied into the body.
func FromError(err error) Envelope[any] {
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		return Fail(http.StatusInternalServerError, "Internal server error")
	}

	var details []ErrorDetail
	switch appErr.Code {
	case apperror.CodePersistence, apperror.CodeInternal:
	default:
		details = append(details, ErrorDetail{Field: appErr.Field(), Message: appErr.Message})
		if fields, ok := appErr.Details["fields"].(map[string]string); ok {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				details = append(details, ErrorDetail{Field: k, Message: fields[k]})
			}
		}
	}
	return Fail(appErr.HTTPStatus, appErr.Message, details...)
}
