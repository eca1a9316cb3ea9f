package apiclient

import "fmt"

// APIError represents an error response from ingestd, whose handlers always
// reply with {"error": "..."} on failure.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsAuthError returns true if this is an authentication failure.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401
}

// IsNotFound returns true if the server reported the resource as missing.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}
