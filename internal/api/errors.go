package api

import (
	"encoding/json"
	"net/http"
)

const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeAuthRequired    = "AUTHENTICATION_REQUIRED"
)

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// additional error context
type ErrorContext map[string]interface{}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
	Context ErrorContext  `json:"context,omitempty"`
}

// builder pattern
type ErrorBuilder struct {
	Code    string
	Message string
	Details []ErrorDetail
	Context ErrorContext
}

func NewError(code, message string) *ErrorBuilder {
	return &ErrorBuilder{Code: code, Message: message}
}

func (e *ErrorBuilder) WithDetails(details []ErrorDetail) *ErrorBuilder {
	e.Details = details
	return e
}

func (e *ErrorBuilder) WithContext(context ErrorContext) *ErrorBuilder {
	e.Context = context
	return e
}

func (e *ErrorBuilder) Create() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
			Context: e.Context,
		},
	}
}

func (e *ErrorBuilder) Write(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e.Create())
}

// builder pattern extensions

func Unauthorized(msg string) *ErrorBuilder {
	return NewError(CodeAuthRequired, msg)
}

func ValidationErr(msg string, details []ErrorDetail) *ErrorBuilder {
	return NewError(CodeValidationError, msg).WithDetails(details)
}
