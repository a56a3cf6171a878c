package service

import (
	"errors"
	"fmt"
)

// Service-level error taxonomy. Handlers map these to HTTP status codes;
// anything not matching a sentinel is treated as an internal error.
var (
	ErrValidation       = errors.New("invalid payload")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrWrongCredentials = errors.New("wrong username/email or password")
)

// Pre-wrapped validation errors with the messages clients rely on.
var (
	ErrInvalidLatitude    = fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	ErrInvalidLongitude   = fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	ErrInvalidLimitOffset = fmt.Errorf("%w: limit and offset must be integers", ErrValidation)
	ErrInvalidCount       = fmt.Errorf("%w: count must be an integer", ErrValidation)
)
