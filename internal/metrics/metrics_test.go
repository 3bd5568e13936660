package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nao1215/benfordscan/internal/crawler"
	"github.com/nao1215/benfordscan/internal/model"
)

func TestInstrumentFetcher(t *testing.T) {
	t.Parallel()

	m := New()
	responses := map[string]error{
		"https://example.com/":     nil,
		"https://example.com/bin":  fmt.Errorf("fetch: %w", crawler.ErrNotText),
		"https://example.com/down": errors.New("connection refused"),
		"https://example.com/stop": context.Canceled,
	}
	f := m.InstrumentFetcher(crawler.FetcherFunc(func(_ context.Context, rawURL string) (string, error) {
		if err := responses[rawURL]; err != nil {
			return "", err
		}
		return "hello", nil
	}))

	for u := range responses {
		_, _ = f.Fetch(context.Background(), u)
	}
	body, err := f.Fetch(context.Background(), "https://example.com/")
	if err != nil || body != "hello" {
		t.Fatalf("expected wrapped fetcher to pass results through, got %q, %v", body, err)
	}

	tests := []struct {
		result string
		want   float64
	}{
		{ResultSuccess, 2},
		{ResultNotText, 1},
		{ResultError, 1},
		{ResultCanceled, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.fetches.WithLabelValues(tt.result)); got != tt.want {
			t.Errorf("expected %v %s fetches, got %v", tt.want, tt.result, got)
		}
	}
	if got := testutil.ToFloat64(m.bytes); got != 10 {
		t.Errorf("expected 10 bytes, got %v", got)
	}
}

func TestObserveSummary(t *testing.T) {
	t.Parallel()

	report := model.NewCrawlReport(1)
	page := model.NewPageStats("https://example.com/")
	page.StartDigits.Add(1)
	page.StartDigits.Add(1)
	page.EndDigits.Add(5)
	report.AddPage(page)
	report.AddFail()
	s := model.Summarize(&model.Result{Seed: page.URL, Report: report}, model.ScanMeta{})

	m := New()
	m.ObserveSummary(s)

	if got := testutil.ToFloat64(m.pages); got != 1 {
		t.Errorf("expected 1 page, got %v", got)
	}
	if got := testutil.ToFloat64(m.failures); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.digits.WithLabelValues("start", "1")); got != 2 {
		t.Errorf("expected two leading 1s, got %v", got)
	}
	if got := testutil.ToFloat64(m.digits.WithLabelValues("end", "5")); got != 1 {
		t.Errorf("expected one trailing 5, got %v", got)
	}
	if got := testutil.ToFloat64(m.benfordMAD); got != s.BenfordMAD {
		t.Errorf("expected MAD %v, got %v", s.BenfordMAD, got)
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.fetches.WithLabelValues(ResultSuccess).Inc()

	path := filepath.Join(t.TempDir(), "textfile", "benfordscan.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	if !strings.Contains(string(data), `benfordscan_fetches_total{result="success"} 1`) {
		t.Errorf("unexpected metrics output:\n%s", data)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ResultSuccess},
		{"not text", crawler.ErrNotText, ResultNotText},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ResultCanceled},
		{"other", errors.New("boom"), ResultError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classify(tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
