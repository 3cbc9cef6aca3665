package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	// Message is the backend's own explanation, empty when the body had none.
	Message string
	Body    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func newHTTPError(status int, body []byte) *HTTPError {
	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	httpErr := &HTTPError{StatusCode: status, Body: string(body)}
	if json.Unmarshal(body, &apiErr) == nil {
		switch {
		case apiErr.Message != "":
			httpErr.Message = apiErr.Message
		case apiErr.Error != "":
			httpErr.Message = apiErr.Error
		}
	}
	return httpErr
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// userMessager is implemented by errors that carry their own user-facing text.
type userMessager interface {
	UserMessage() string
}

// Message returns the text to show a user for err: the error's own user
// message, else the backend message, else fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}
