// Package crawler fetches a site from a seed URL and turns every page into
// digit-frequency statistics.
//
// # Architecture
//
// The Spider fetches the seed page, splits the links it finds into one chunk
// per worker and runs the workers concurrently. Each worker walks its chunk
// depth-first, descending into child links until the depth budget is spent,
// and returns a CrawlReport that the Spider merges into the final result.
//
// Workers share two things: the Fetcher (and through it one *http.Client)
// and the set of URLs already claimed for fetching, so each URL is fetched at
// most once per scan and cyclic link graphs terminate.
//
// # Components
//
//   - Canonicalize and NumberTokens: numeric token handling
//   - ParseAnchors and Extract: link and statistics extraction from HTML
//   - Split and Label: frontier partitioning and worker labels
//   - Fetcher and HTTPFetcher: page retrieval
//   - Spider: the worker pool and recursive crawl
//   - Progress: per-URL success and failure markers
//
// # Usage
//
//	client, err := crawler.NewHTTPClient(crawler.ClientOptions{Timeout: time.Minute})
//	fetcher := crawler.NewHTTPFetcher(client)
//	spider := crawler.NewSpider(fetcher, crawler.WithDepth(2), crawler.WithThreads(8))
//	result, err := spider.Crawl(ctx, "https://example.com")
package crawler
