package dto

import "time"

// ErrorResponse is the standardized JSON error body returned by the API.
//
// Fields:
//   - Message: human-readable summary of what went wrong.
//   - ErrorDetails: underlying error text, when one exists.
//   - Timestamp: when the error response was produced.
type ErrorResponse struct {
	Message      string    `json:"message"`
	ErrorDetails string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Error implements the error interface so responses can flow through
// error-typed plumbing in handlers and tests.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails != "" {
		return e.Message + ": " + e.ErrorDetails
	}
	return e.Message
}

// NewErrorResponse builds an ErrorResponse from a message and an optional
// inner error.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
