// Package log builds the slog loggers used by benfordscan and redacts
// credentials from their output.
//
// Scans can send a cookie and extra headers taken from the config file, and
// crawled URLs sometimes carry passwords or tokens in their userinfo or
// query string. The RedactingHandler masks those values before any record
// reaches the underlying handler, in every log level.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("fetch failed",
//	    "url", "https://user:pw@example.com/?token=abc", // password and token masked
//	    "cookie", "session=abc123",                      // masked
//	)
package log
