package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed   = fmt.Errorf("authentication failed")
	ErrTokenExpired = fmt.Errorf("access token expired")
	ErrTimeout      = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Local store errors
	ErrNotFound  = fmt.Errorf("not found")
	ErrDuplicate = fmt.Errorf("already exists")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ValidationError reports bad user input such as an empty query or playlist name.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// AuthError reports a failed client-credentials exchange.
type AuthError struct {
	Status  int // HTTP status of the token endpoint, zero when the request never completed
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%v (status %d): %s", ErrAuthFailed, e.Status, msg)
	}
	return fmt.Sprintf("%v: %s", ErrAuthFailed, msg)
}

func (e *AuthError) Is(target error) bool { return target == ErrAuthFailed }
func (e *AuthError) Unwrap() error        { return e.Err }

// CatalogError reports a failed search or detail call against the remote catalog.
type CatalogError struct {
	Provider string
	Status   int // HTTP status, zero for transport failures
	Message  string
	Err      error
}

func (e *CatalogError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "request failed"
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s catalog error (status %d): %s", e.Provider, e.Status, msg)
	}
	return fmt.Sprintf("%s catalog error: %s", e.Provider, msg)
}

// Is matches [ErrAPIRequest], and [ErrTokenExpired] for 401 responses.
func (e *CatalogError) Is(target error) bool {
	switch target {
	case ErrAPIRequest:
		return true
	case ErrTokenExpired:
		return e.Status == 401
	}
	return false
}

func (e *CatalogError) Unwrap() error { return e.Err }

// NotFoundError reports a local id (favorite or playlist) that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateError reports an item that is already present. It is informational, not a failure.
type DuplicateError struct {
	Container string
	Title     string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%q is already in %s", e.Title, e.Container)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// IsInformational reports whether err only carries an informational status.
func IsInformational(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
