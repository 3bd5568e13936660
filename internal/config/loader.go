package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".benfordscan"

// XDGConfigFile is the file name looked up inside XDGConfigDir.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads site configurations from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Unknown keys are
// rejected so that a misspelled setting does not silently fall back to its
// default. An empty file yields an empty configuration.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(expandHome(path)) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}
	return &cf, nil
}

// FindConfigFile returns the configuration file to load, or "" when there
// is none.
//
// An explicit configPath ("~/" is expanded) is returned only if it exists.
// Otherwise the first existing entry of SearchPaths wins.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		return firstExisting([]string{expandHome(configPath)})
	}
	return firstExisting(SearchPaths())
}

// SearchPaths lists the implicit configuration locations in lookup order:
// ./.benfordscan, $XDG_CONFIG_HOME/benfordscan/config.yaml, ~/.benfordscan.
// Locations that cannot be determined are omitted.
func SearchPaths() []string {
	cwd, _ := os.Getwd()
	home, _ := os.UserHomeDir()
	return searchPaths(cwd, XDGConfigDir(), home)
}

func searchPaths(cwd, xdgDir, home string) []string {
	var paths []string
	if cwd != "" {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	if xdgDir != "" {
		paths = append(paths, filepath.Join(xdgDir, XDGConfigFile))
	}
	if home != "" {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	return paths
}

// firstExisting returns the first path that names a regular file.
func firstExisting(paths []string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
