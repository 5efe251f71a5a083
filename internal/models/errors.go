package models

import "net/http"

// Error type tags
const (
	ErrTypeInvalidRequest = "invalid_request_error"
	ErrTypeConfiguration  = "configuration_error"
	ErrTypeAuthentication = "authentication_error"
	ErrTypeUpstream       = "upstream_error"
	ErrTypeServer         = "server_error"
)

// Machine-readable error codes
const (
	ErrCodeMissingFields = "missing_required_fields"
	ErrCodeMissingAPIKey = "missing_api_key"
	ErrCodeInvalidAPIKey = "invalid_api_key"
	ErrCodeReplicate     = "replicate_error"
	ErrCodeInternal      = "internal_error"
	ErrCodeNotFound      = "not_found"
)

// APIError is the client-visible error. Status carries the HTTP status the
// transport should use; it is not serialized.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorEnvelope wraps an APIError for serialization
type ErrorEnvelope struct {
	Error *APIError `json:"error"`
}

// Envelope wraps the error in the outbound envelope shape
func (e *APIError) Envelope() ErrorEnvelope {
	return ErrorEnvelope{Error: e}
}

// NewInvalidRequestError reports a request missing required fields
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Message: message,
		Type:    ErrTypeInvalidRequest,
		Code:    ErrCodeMissingFields,
		Status:  http.StatusBadRequest,
	}
}

// NewConfigurationError reports a proxy deployed without a shared secret
func NewConfigurationError(message string) *APIError {
	return &APIError{
		Message: message,
		Type:    ErrTypeConfiguration,
		Code:    ErrCodeMissingAPIKey,
		Status:  http.StatusInternalServerError,
	}
}

// NewAuthenticationError reports a missing, malformed, or wrong credential
func NewAuthenticationError(message string) *APIError {
	return &APIError{
		Message: message,
		Type:    ErrTypeAuthentication,
		Code:    ErrCodeInvalidAPIKey,
		Status:  http.StatusUnauthorized,
	}
}

// NewUpstreamError reports a failed backend call or prediction
func NewUpstreamError(message string) *APIError {
	return &APIError{
		Message: message,
		Type:    ErrTypeUpstream,
		Code:    ErrCodeReplicate,
		Status:  http.StatusBadGateway,
	}
}

// NewInternalError reports any other fault during processing
func NewInternalError(message string) *APIError {
	return &APIError{
		Message: message,
		Type:    ErrTypeServer,
		Code:    ErrCodeInternal,
		Status:  http.StatusInternalServerError,
	}
}

// NewNotFoundError reports an unmatched route
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Message: message,
		Type:    ErrTypeInvalidRequest,
		Code:    ErrCodeNotFound,
		Status:  http.StatusNotFound,
	}
}
