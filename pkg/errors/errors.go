package errors

import "errors"

var (
	// Token decoding and validation.
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")

	// Client-side validation, before any request is made.
	ErrMissingFields = errors.New("missing required fields")

	// Auth flow.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNetwork            = errors.New("network error")
	ErrStorage            = errors.New("token storage error")
	ErrResolveTimeout     = errors.New("session resolution timed out")
	ErrGuestRestricted    = errors.New("not available for guest accounts")

	// Backend.
	ErrUserNotFound = errors.New("user not found")
	ErrEventExists  = errors.New("event already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)
