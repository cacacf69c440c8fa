package types

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Response is the JSON envelope printed by the CLI for every operation
type Response struct {
	Success   bool        `json:"success"`
	Operation string      `json:"operation"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	TraceID   string      `json:"traceId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewSuccessResponse creates a new success response
func NewSuccessResponse(operation string, data interface{}, message string) *Response {
	return &Response{
		Success:   true,
		Operation: operation,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(operation string, err error) *Response {
	resp := &Response{
		Success:   false,
		Operation: operation,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// ToJSON converts the response to JSON bytes
func (r *Response) ToJSON() ([]byte, error) {
	return sonic.Marshal(r)
}

// ToIndentedJSON is ToJSON for humans
func (r *Response) ToIndentedJSON() ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(r, "", "  ")
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// CodeRequired marks a missing required field
const CodeRequired = "required"

// ValidationErrors collects every violated field of one document
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ValidationError, 0),
	}
}

// Add adds a validation error to the collection
func (ve *ValidationErrors) Add(field, value, message, code string) {
	ve.Errors = append(ve.Errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Code:    code,
	})
}

// HasErrors returns true if there are validation errors
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Fields lists the names of the violated fields in order
func (ve *ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		fields = append(fields, e.Field)
	}
	return fields
}

// Error implements the error interface
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "no validation errors"
	}

	messages := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		messages = append(messages, err.Field+": "+err.Message)
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// ErrOrNil returns ve as an error only when it holds violations
func (ve *ValidationErrors) ErrOrNil() error {
	if ve == nil || !ve.HasErrors() {
		return nil
	}
	return ve
}
