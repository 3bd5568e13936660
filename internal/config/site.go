package config

import (
	"net/url"
	"strings"
	"time"
)

// SiteConfig holds settings for one site, or the defaults for all sites.
// Pointer fields distinguish "not set" from an explicit zero.
type SiteConfig struct {
	// Depth overrides the crawl depth. 0 is a valid override (seed only).
	Depth *int `yaml:"depth,omitempty"`

	// Threads overrides the number of crawl workers.
	Threads *int `yaml:"threads,omitempty"`

	// Timeout overrides the per-request timeout, e.g. "30s". "0s" disables it.
	Timeout *time.Duration `yaml:"timeout,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Proxy is a SOCKS5 proxy address in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`

	// Cookie is an HTTP cookie sent with every request.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .benfordscan configuration file.
type File struct {
	// Defaults apply to every scan unless a site entry overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps a host (e.g. "example.com" or "example.com:8080") to its
	// settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// GetSiteConfig returns the settings for the host of seedURL: the defaults
// with any matching site entry layered on top. The host is matched with its
// port first, then without it, ignoring case.
func (cf *File) GetSiteConfig(seedURL string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.lookup(seedURL)
	if !ok {
		return result
	}

	if site.Depth != nil {
		result.Depth = site.Depth
	}
	if site.Threads != nil {
		result.Threads = site.Threads
	}
	if site.Timeout != nil {
		result.Timeout = site.Timeout
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if site.Proxy != "" {
		result.Proxy = site.Proxy
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	return result
}

func (cf *File) lookup(seedURL string) (SiteConfig, bool) {
	u, err := url.Parse(seedURL)
	if err != nil || u.Host == "" {
		return SiteConfig{}, false
	}
	for _, key := range []string{u.Host, u.Hostname()} {
		for host, sc := range cf.Sites {
			if strings.EqualFold(host, key) {
				return sc, true
			}
		}
	}
	return SiteConfig{}, false
}
