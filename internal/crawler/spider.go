package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/benfordscan/internal/model"
)

// Spider crawls a site from a seed URL with a fixed pool of workers.
//
// The seed page is always fetched. Its links are split into one chunk per
// worker, and each worker descends depth-first from its chunk until the
// depth budget runs out. depth 0 examines the seed page only.
type Spider struct {
	// fetcher retrieves page bodies. It is shared by all workers.
	fetcher Fetcher

	// depth is the number of link levels followed below the seed.
	depth int

	// threads is the number of chunks the seed's links are split into.
	threads int

	// progress receives one marker per processed URL.
	progress *Progress

	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithDepth sets how many link levels are followed below the seed.
func WithDepth(depth int) SpiderOption {
	return func(s *Spider) {
		if depth >= 0 {
			s.depth = depth
		}
	}
}

// WithThreads sets the worker pool size.
func WithThreads(threads int) SpiderOption {
	return func(s *Spider) {
		if threads > 0 {
			s.threads = threads
		}
	}
}

// WithProgress sets where per-URL markers are written.
func WithProgress(p *Progress) SpiderOption {
	return func(s *Spider) {
		if p != nil {
			s.progress = p
		}
	}
}

// WithLogger sets the logger used for per-URL diagnostics.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider that fetches pages through fetcher.
// Defaults: depth 1, 8 threads, progress discarded.
func NewSpider(fetcher Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  fetcher,
		depth:    1,
		threads:  8,
		progress: NewProgress(nil),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Crawl scans the site reachable from seed.
//
// A seed that is not an absolute URL fails with ErrInvalidURL and a seed
// that cannot be fetched fails with ErrSeedUnreachable. Every other failure
// is counted in the report. When ctx is cancelled the workers stop before
// their next URL and the partial result is returned with Interrupted set.
func (s *Spider) Crawl(ctx context.Context, seed string) (*model.Result, error) {
	seedURL, err := ParseURL(seed)
	if err != nil {
		return nil, err
	}

	visited := newVisitedSet()
	visited.claim(seedURL.String())

	body, err := s.fetcher.Fetch(ctx, seedURL.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSeedUnreachable, seed, err)
	}
	seedStats := Extract(body, seedURL, Digest(body))

	report := model.NewCrawlReport(1)
	report.AddPage(seedStats)

	children := SetToSlice(seedStats.ChildURLs)
	result := &model.Result{
		Seed:         seedURL.String(),
		InitialLinks: len(children),
		Report:       report,
	}
	if s.depth == 0 {
		return result, nil
	}

	chunks := Split(children, s.threads)
	reports := make([]*model.CrawlReport, len(chunks))

	// Workers record failures in their reports and never return an error,
	// so the group only provides the join.
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		label := Label(i)
		g.Go(func() error {
			s.logger.Debug("worker started", "worker", label, "urls", len(chunk))
			reports[i] = s.crawl(gctx, visited, chunk, s.depth, label)
			s.logger.Debug("worker finished", "worker", label,
				"success", reports[i].Success, "fail", reports[i].Fail)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range reports {
		report.Merge(r)
	}
	result.Interrupted = ctx.Err() != nil
	return result, nil
}

// crawl processes urls with the given remaining depth and returns the
// report of the whole subtree. Each URL is claimed in visited before it is
// fetched; URLs claimed elsewhere are skipped without being counted.
func (s *Spider) crawl(ctx context.Context, visited *visitedSet, urls []string, remaining int, label string) *model.CrawlReport {
	report := model.NewCrawlReport(0)
	if remaining == 0 {
		return report
	}

	for _, raw := range urls {
		if ctx.Err() != nil {
			break
		}
		if !visited.claim(raw) {
			continue
		}

		body, err := s.fetcher.Fetch(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				// Aborted by cancellation, not a failure of the page.
				break
			}
			s.logger.Debug("fetch failed", "worker", label, "url", raw, "error", err)
			report.AddFail()
			s.progress.Fail(label)
			continue
		}

		pageURL, err := ParseURL(raw)
		if err != nil {
			s.logger.Debug("invalid URL", "worker", label, "url", raw, "error", err)
			report.AddFail()
			s.progress.Fail(label)
			continue
		}

		stats := Extract(body, pageURL, Digest(body))
		report.Merge(s.crawl(ctx, visited, stats.Children(), remaining-1, label))
		report.AddPage(stats)
		s.progress.Success(label)
	}
	return report
}

// visitedSet records URLs claimed for fetching during one crawl.
type visitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// claim marks rawURL as taken and reports whether the caller is the first
// to claim it.
func (v *visitedSet) claim(rawURL string) bool {
	key := normalizeURL(rawURL)

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	return true
}

// normalizeURL maps equivalent spellings of a URL to one key: the scheme and
// host are lowercased, the fragment dropped and an empty path becomes "/".
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
