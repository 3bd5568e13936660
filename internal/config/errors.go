package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and let callers use
// errors.Is() while still printing a readable message.
var (
	// ErrNoURL is returned when no seed URL is specified.
	ErrNoURL = errors.New("no seed URL specified: use --url")

	// ErrInvalidURL is returned when the seed URL is not an absolute
	// http or https URL.
	ErrInvalidURL = errors.New("invalid seed URL: must be an absolute http or https URL")

	// ErrInvalidDepth is returned when the depth is negative.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative")

	// ErrInvalidThreads is returned when the worker count is not positive.
	ErrInvalidThreads = errors.New("invalid threads: must be positive")

	// ErrInvalidTimeout is returned when the timeout is negative.
	// Zero disables the timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidProxy is returned when the proxy address is not "host:port".
	ErrInvalidProxy = errors.New("invalid proxy address: expected host:port")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
