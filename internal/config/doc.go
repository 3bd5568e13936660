// Package config provides configuration structures and utilities for
// benfordscan. It defines the scan options set from CLI flags, the optional
// .benfordscan YAML file with per-site overrides, and the XDG directories
// used for the scan history database.
package config
