package crawler

import "errors"

var (
	// ErrNotText is returned when a response does not carry a textual
	// content type and therefore cannot be scanned for numbers or links.
	ErrNotText = errors.New("response is not text")

	// ErrInvalidURL is returned when a URL is not absolute (scheme and host).
	ErrInvalidURL = errors.New("invalid URL")

	// ErrSeedUnreachable is returned when the seed page cannot be fetched.
	// It is the only crawl failure that aborts a scan.
	ErrSeedUnreachable = errors.New("seed URL unreachable")
)
