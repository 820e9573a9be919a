// Package errors provides error handling for Stoker.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Structured details on wrapped errors
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrJobNotFound) {
//	    // handle unknown job
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	GetAllDetails = crdb.GetAllDetails
	GetAllHints   = crdb.GetAllHints
)

// Common sentinel errors for use across Stoker.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrJobNotFound indicates the referenced job identifier is unknown
	// to the registry.
	ErrJobNotFound = New("job not found")

	// ErrSchedulerStopped indicates an operation was attempted against a
	// scheduler that is not running.
	ErrSchedulerStopped = New("scheduler not running")

	// ErrRateLimited indicates a claim was refused by the rate limiter.
	ErrRateLimited = New("rate limit exceeded")
)

// IsJobNotFound checks if an error is or wraps ErrJobNotFound.
func IsJobNotFound(err error) bool {
	return err != nil && Is(err, ErrJobNotFound)
}

// NewJobNotFound creates a job-not-found error carrying the offending ID.
func NewJobNotFound(jobID string) error {
	return WithDetailf(Wrapf(ErrJobNotFound, "job %s", jobID), "Job ID: %s", jobID)
}
