package app

import (
	"errors"
	"fmt"
)

// ValidationError reports a rejected input field before any upstream call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	// ErrInvalidCredentials covers every credential rejection with one message.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrProfileMissing indicates auth accepted the credentials but no
	// profile row exists for the identity.
	ErrProfileMissing = errors.New("account profile not found")
	// ErrAlreadyVerified rejects document uploads from verified landlords.
	ErrAlreadyVerified = errors.New("account is already verified")
	// ErrForbidden rejects operations the session may not perform.
	ErrForbidden = errors.New("forbidden")
	// ErrNotAuthenticated rejects operations without a complete session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrProfileUpdate indicates the profile write or its re-read failed.
	ErrProfileUpdate = errors.New("failed to update profile")
	// ErrPropertyNotFound rejects mutations of a missing property.
	ErrPropertyNotFound = errors.New("property not found")
)
