package config

import (
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultDepth follows one level of links below the seed page.
	DefaultDepth = 1

	// DefaultThreads is the number of crawl workers.
	DefaultThreads = 8

	// DefaultTimeout bounds each HTTP request so one hanging server cannot
	// stall a worker forever. Zero disables it.
	DefaultTimeout = 60 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "benfordscan"

	// DefaultUserAgent identifies benfordscan in HTTP requests.
	DefaultUserAgent = "benfordscan/1.0 (+https://github.com/nao1215/benfordscan)"

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Config holds all options for one scan.
// It is populated from CLI flags and the config file, then passed down
// explicitly; there is no global configuration state.
type Config struct {
	// URL is the seed URL the crawl starts from.
	URL string

	// Depth is the number of link levels followed below the seed page.
	// Depth 0 examines only the seed page.
	Depth int

	// Threads is the number of crawl workers.
	Threads int

	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the locations of SearchPaths are tried in order.
	ConfigFilePath string

	// SiteConfigs holds the per-site settings loaded from the config file.
	SiteConfigs *File

	// JSONReport prints the summary as JSON. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the summary as Markdown. Mutually exclusive
	// with JSONReport.
	MarkdownReport bool

	// OutputFile receives the per-page CSV report when set.
	OutputFile string

	// MetricsFile receives Prometheus metrics for the scan when set.
	MetricsFile string

	// Proxy is an optional SOCKS5 proxy in "host:port" format.
	Proxy string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Cookie is a raw Cookie header value sent with every request.
	Cookie string

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// DBDir is the directory holding the scan history database.
	DBDir string

	// SaveToDB stores the scan summary in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Depth:       DefaultDepth,
		Threads:     DefaultThreads,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for benfordscan.
// On Linux: ~/.local/share/benfordscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for benfordscan.
// On Linux: ~/.config/benfordscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs once before any network activity.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrNoURL
	}
	if !isValidSeedURL(c.URL) {
		return ErrInvalidURL
	}
	if c.Depth < 0 {
		return ErrInvalidDepth
	}
	if c.Threads <= 0 {
		return ErrInvalidThreads
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.Proxy != "" && !isValidProxyAddress(c.Proxy) {
		return ErrInvalidProxy
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// ApplySiteConfig copies the file settings in sc into c. Settings for which
// isSet reports true were given explicitly on the command line and win over
// the file. Flag names are "depth", "threads", "timeout" and "proxy".
func (c *Config) ApplySiteConfig(sc SiteConfig, isSet func(flag string) bool) {
	if isSet == nil {
		isSet = func(string) bool { return false }
	}
	if sc.Depth != nil && !isSet("depth") {
		c.Depth = *sc.Depth
	}
	if sc.Threads != nil && !isSet("threads") {
		c.Threads = *sc.Threads
	}
	if sc.Timeout != nil && !isSet("timeout") {
		c.Timeout = *sc.Timeout
	}
	if sc.Proxy != "" && !isSet("proxy") {
		c.Proxy = sc.Proxy
	}
	if sc.UserAgent != "" {
		c.UserAgent = sc.UserAgent
	}
	if sc.Cookie != "" {
		c.Cookie = sc.Cookie
	}
	if len(sc.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(sc.Headers))
		}
		for k, v := range sc.Headers {
			c.Headers[k] = v
		}
	}
}

// isValidSeedURL reports whether raw is an absolute http(s) URL with a host.
func isValidSeedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// isValidProxyAddress checks for a "host:port" address with a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
