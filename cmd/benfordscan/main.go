// Package main provides the entry point for the benfordscan CLI.
//
// benfordscan crawls a website from a seed URL and counts the first and
// last digits of every number on the visited pages, so the distribution
// can be checked against Benford's Law.
//
// Usage:
//
//	benfordscan scan -u https://example.com -d 2 -t 8
//	benfordscan history https://example.com
//
// See --help for all available options.
package main

// main is the entry point for benfordscan.
func main() {
	Execute()
}
