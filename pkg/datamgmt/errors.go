package datamgmt

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response. Detail carries the {"detail": ...} field
// ADEPT services return, or the raw body when there is none.
type APIError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
}

func newAPIError(status int, body []byte) *APIError {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Detail != "" {
		apiErr.StatusCode = status
		return &apiErr
	}
	detail := string(body)
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Detail: detail}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("data management service returned %d: %s", e.StatusCode, e.Detail)
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsServerError returns true for 5xx responses.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}
