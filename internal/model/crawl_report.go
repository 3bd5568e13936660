package model

// CrawlReport accumulates the outcome of crawling a set of URLs.
// Each crawl worker owns its report exclusively until it returns; reports
// are then combined with Merge.
//
// Success + Fail always equals the number of URLs dequeued for fetching.
type CrawlReport struct {
	// Pages holds the statistics of every successfully processed page.
	// Order carries no meaning.
	Pages []*PageStats `json:"pages"`

	// Success counts pages fetched and parsed.
	Success uint64 `json:"success"`

	// Fail counts fetch and URL validation failures.
	Fail uint64 `json:"fail"`
}

// NewCrawlReport returns an empty report with room for capacity pages.
func NewCrawlReport(capacity int) *CrawlReport {
	if capacity < 0 {
		capacity = 0
	}
	return &CrawlReport{Pages: make([]*PageStats, 0, capacity)}
}

// AddPage appends a processed page and counts it as a success.
func (r *CrawlReport) AddPage(p *PageStats) {
	r.Pages = append(r.Pages, p)
	r.Success++
}

// AddFail counts one failed URL.
func (r *CrawlReport) AddFail() {
	r.Fail++
}

// Merge folds other into r: counters are summed and the page lists
// concatenated. Pages fetched independently by different workers are not
// deduplicated. A nil other is a no-op.
func (r *CrawlReport) Merge(other *CrawlReport) {
	if other == nil {
		return
	}
	r.Pages = append(r.Pages, other.Pages...)
	r.Success += other.Success
	r.Fail += other.Fail
}

// Len returns the number of pages in the report.
func (r *CrawlReport) Len() int {
	return len(r.Pages)
}

// Processed returns Success + Fail.
func (r *CrawlReport) Processed() uint64 {
	return r.Success + r.Fail
}
