package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrNotAuthenticated = errors.New("artist not logged in")
	ErrNotOwner         = errors.New("artist does not own this project")
	ErrSubmitInFlight   = errors.New("a submission is already in progress")
)

// GenericNetworkMessage is what the views show for any transport failure.
const GenericNetworkMessage = "Network error. Please check your connection and try again."

// ValidationError is a local form failure. It blocks submission and is never
// sent to the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NetworkError wraps a transport-level failure (dial, timeout, bad body).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BackendError is a non-2xx response. Message holds the backend's {error}
// text when it sent one.
type BackendError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
}

// UserMessage converts any error from the directory or validators into the
// text a view displays. fallback is used for backend errors without a body.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}

	var bErr *BackendError
	if errors.As(err, &bErr) {
		if bErr.Message != "" {
			return bErr.Message
		}
		return fallback
	}

	var nErr *NetworkError
	if errors.As(err, &nErr) {
		return GenericNetworkMessage
	}

	switch {
	case errors.Is(err, ErrProjectNotFound):
		return "Project not found"
	case errors.Is(err, ErrNotAuthenticated):
		return "Please log in to continue"
	case errors.Is(err, ErrNotOwner):
		return "You are not authorized to edit this project"
	case errors.Is(err, ErrSubmitInFlight):
		return "Please wait for the current request to finish"
	}
	return fallback
}
