package waldur

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the Waldur API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("waldur: %s returned status %d", e.Endpoint, e.StatusCode)
}

// ConnectionError is a transport-level failure: the request never produced a
// response from Waldur.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("waldur: connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// UserMessage translates a client error into the phrasing shown to the agent.
// notFound is used for 404s, which read differently per tool.
func UserMessage(err error, endpoint, notFound string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return "Authentication failed. Please check your Waldur API token."
		case http.StatusForbidden:
			return "Access denied. You don't have permission for this operation."
		case http.StatusBadRequest:
			return fmt.Sprintf("Invalid data provided for %s request. Please check your input.", endpoint)
		case http.StatusNotFound:
			return notFound
		default:
			return fmt.Sprintf("API returned status error: %d.", apiErr.StatusCode)
		}
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return fmt.Sprintf("Error connecting to the server: %v", connErr.Err)
	}
	return err.Error()
}
