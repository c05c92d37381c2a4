package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrLockHeld        = errors.New("lock is held by another worker")
	ErrEmptyBroadcast  = errors.New("broadcast text is empty")

	// Storefront errors
	ErrStorefrontUnavailable = errors.New("storefront unavailable")
	ErrMalformedResponse     = errors.New("malformed storefront response")
)
