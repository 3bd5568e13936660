// Package database stores the history of benfordscan runs in SQLite.
//
// Every completed (or interrupted) scan is saved as one row in the scans
// table together with its JSON summary, and each processed page as one row
// in the pages table. The history command reads these rows back to list
// scanned seeds and to compare the two most recent scans of a seed.
//
// The database is a single file, benfordscan.db, under the XDG data
// directory by default. modernc.org/sqlite is CGO-free, so the binary
// cross-compiles without a C toolchain.
package database
