// Package apierror provides the error envelopes returned to API clients.
// Internal causes (DB errors, stack traces) are logged, never serialized here.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Internal is the body of every 5xx response.
func Internal() *APIError {
	return New("Error interno del servidor")
}

// ValidationError reports which inputs were rejected and why.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// NewFieldError is a ValidationError for a single field.
func NewFieldError(field, reason string) *ValidationError {
	return &ValidationError{Detail: field + ": " + reason, Fields: map[string]string{field: reason}}
}
