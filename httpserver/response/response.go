package response

import "time"

// Stable error codes surfaced to clients. Responses never carry raw
// datastore errors or stack traces, only a code, message and timestamp.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorDetail struct {
	Code         string      `json:"code"`
	Message      string      `json:"message,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	RequestError interface{} `json:"requestError,omitempty"`
}

type JSONResponseError struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

func newError(code, message string) JSONResponseError {
	return JSONResponseError{
		Success: false,
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Timestamp: time.Now().UTC(),
		},
	}
}
