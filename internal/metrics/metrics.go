// Package metrics records Prometheus metrics for a scan and writes them in
// the text exposition format, ready for the node_exporter textfile
// collector.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nao1215/benfordscan/internal/crawler"
	"github.com/nao1215/benfordscan/internal/model"
)

// Fetch results used as the "result" label.
const (
	ResultSuccess  = "success"
	ResultNotText  = "not_text"
	ResultCanceled = "canceled"
	ResultError    = "error"
)

// Metrics holds the collectors of one scan. Each Metrics has its own
// registry, so several scans in one process never share counters.
type Metrics struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	bytes         prometheus.Counter

	pages      prometheus.Gauge
	failures   prometheus.Gauge
	digits     *prometheus.GaugeVec
	benfordMAD prometheus.Gauge
}

// New creates a Metrics with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "benfordscan_fetches_total",
				Help: "Total number of page fetches, labeled by result.",
			},
			[]string{"result"},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "benfordscan_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		bytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "benfordscan_fetched_bytes_total",
				Help: "Total number of decoded body bytes fetched.",
			},
		),
		pages: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "benfordscan_pages",
				Help: "Number of pages processed by the last scan.",
			},
		),
		failures: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "benfordscan_failures",
				Help: "Number of URLs that failed in the last scan.",
			},
		),
		digits: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "benfordscan_digits",
				Help: "Digit counts of the last scan, labeled by position (start or end) and digit.",
			},
			[]string{"position", "digit"},
		),
		benfordMAD: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "benfordscan_benford_mad",
				Help: "Mean absolute deviation of the leading digits from Benford's Law.",
			},
		),
	}
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// InstrumentFetcher wraps f so every fetch is counted and timed.
func (m *Metrics) InstrumentFetcher(f crawler.Fetcher) crawler.Fetcher {
	return crawler.FetcherFunc(func(ctx context.Context, rawURL string) (string, error) {
		start := time.Now()
		body, err := f.Fetch(ctx, rawURL)
		m.fetchDuration.Observe(time.Since(start).Seconds())
		m.fetches.WithLabelValues(classify(err)).Inc()
		if err == nil {
			m.bytes.Add(float64(len(body)))
		}
		return body, err
	})
}

// ObserveSummary records the totals and digit histograms of a finished scan.
func (m *Metrics) ObserveSummary(s *model.Summary) {
	m.pages.Set(float64(s.Pages))
	m.failures.Set(float64(s.Fail))
	for d := 1; d <= model.DigitCount; d++ {
		label := strconv.Itoa(d)
		m.digits.WithLabelValues("start", label).Set(float64(s.StartDigits.Count(d)))
		m.digits.WithLabelValues("end", label).Set(float64(s.EndDigits.Count(d)))
	}
	m.benfordMAD.Set(s.BenfordMAD)
}

// WriteTextfile writes every metric to path in the text exposition format,
// creating parent directories as needed.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// classify maps a fetch error to a result label.
func classify(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, crawler.ErrNotText):
		return ResultNotText
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	default:
		return ResultError
	}
}
