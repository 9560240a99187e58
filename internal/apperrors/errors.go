// Package apperrors holds the sentinel errors shared by the domain services.
// Handlers map them onto HTTP responses with errors.Is.
package apperrors

import "errors"

var (
	// ErrNotFound is returned when a referenced group slug, username or post
	// id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when an authenticated user tries to modify
	// content they do not own.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned when submitted content fails required-field
	// or file-type checks.
	ErrValidation = errors.New("validation failed")

	// ErrAnonymous is returned by operations that need an authenticated caller.
	ErrAnonymous = errors.New("authentication required")
)
