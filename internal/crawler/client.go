package crawler

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// maxRedirects bounds redirect chains so a redirect loop counts as one
// failed fetch instead of hanging a worker.
const maxRedirects = 10

// ClientOptions configures the HTTP client shared by all crawl workers.
type ClientOptions struct {
	// Timeout bounds each request, body included. Zero means no timeout.
	Timeout time.Duration

	// Proxy is an optional SOCKS5 proxy address in "host:port" format.
	Proxy string

	// Cookie is a raw Cookie header value sent with every request.
	Cookie string

	// Headers are extra request headers sent with every request.
	Headers map[string]string

	// MaxConnsPerHost caps idle connections kept per host. Zero keeps the
	// transport default.
	MaxConnsPerHost int
}

// NewHTTPClient creates the HTTP client used for a scan.
//
// One client is created per scan and shared by every worker; *http.Client is
// safe for concurrent use.
func NewHTTPClient(opts ClientOptions) (*http.Client, error) {
	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		transport = &http.Transport{}
	}
	transport = transport.Clone()
	if opts.MaxConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = opts.MaxConnsPerHost
	}

	if opts.Proxy != "" {
		dialer, err := proxy.SOCKS5("tcp", opts.Proxy, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	}

	var rt http.RoundTripper = transport
	if opts.Cookie != "" || len(opts.Headers) > 0 {
		rt = &headerInjectingTransport{
			base:    transport,
			cookie:  opts.Cookie,
			headers: opts.Headers,
		}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   opts.Timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// headerInjectingTransport adds the configured cookie and headers to every
// request, redirects included.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
