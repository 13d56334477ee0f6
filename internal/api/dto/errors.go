package dto

// APIError is the JSON body of every error response. Missing is only set
// with ErrCodeMissingColumns and carries the unresolved column roles.
type APIError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

// Error codes
const (
	ErrCodeNotFound       = "not_found"
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInternalError  = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeMissingColumns = "missing_columns"
	ErrCodeNoReport       = "no_report"
	ErrCodeNotProcessed   = "not_processed"
)

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// NotFoundError creates a not found error response.
func NotFoundError(resource string) APIError {
	return NewAPIError(ErrCodeNotFound, resource+" not found")
}

// BadRequestError creates a bad request error response.
func BadRequestError(message string) APIError {
	return NewAPIError(ErrCodeBadRequest, message)
}

// InternalError creates an internal server error response.
func InternalError() APIError {
	return NewAPIError(ErrCodeInternalError, "an internal error occurred")
}

// ValidationError creates a validation error response.
func ValidationError(message string) APIError {
	return NewAPIError(ErrCodeValidation, message)
}

// MissingColumnsError lists every required column role that was not found.
func MissingColumnsError(message string, roles []string) APIError {
	e := NewAPIError(ErrCodeMissingColumns, message)
	e.Missing = roles
	return e
}

// NoReportError means the data cannot produce a report at all.
func NoReportError(message string) APIError {
	return NewAPIError(ErrCodeNoReport, message)
}

// NotProcessedError means a result was requested before processing.
func NotProcessedError() APIError {
	return NewAPIError(ErrCodeNotProcessed, "session has not been processed since the data last changed")
}
