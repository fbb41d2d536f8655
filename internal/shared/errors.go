package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors: never retriable, stop the run
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrFatalConfig   = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Transient API faults: surfaced to the caller of a run, recovered
	// by the next scheduled invocation
	ErrTransientFetch = fmt.Errorf("transient fetch failure")
	ErrTransientWrite = fmt.Errorf("transient write failure")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
