// Package model defines the data structures shared by the crawler, the
// report writers and the scan history database.
//
// This package contains the following main types:
//   - DigitHistogram: counts of digits 1-9 in the first or last position of
//     canonical numbers
//   - LengthMultiset: counts of canonical numbers by length
//   - PageStats: the statistics and child links of one crawled page
//   - CrawlReport: pages plus success/fail counters, merged across workers
//   - Result and Summary: the outcome of a full scan and its aggregate view
//
// The types carry no behavior beyond counting and merging so that every
// other package can depend on them without import cycles.
package model
