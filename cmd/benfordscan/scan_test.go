package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/benfordscan/internal/config"
	"github.com/nao1215/benfordscan/internal/crawler"
	"github.com/nao1215/benfordscan/internal/database"
	"github.com/nao1215/benfordscan/internal/report"
)

// newTestServer serves a two-page site: the root page links to /a.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"/":  `<html><body><p>Revenue 123 and 45.60</p><a href="/a">next</a></body></html>`,
		"/a": `<html><body><p>Only 7 here</p><a href="/">home</a></body></html>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// emptyConfigFile writes an empty config file so tests never pick up a
// .benfordscan from the working or home directory.
func emptyConfigFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".benfordscan")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// executeScan runs "benfordscan scan" with args and returns stdout and stderr.
func executeScan(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"scan"}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"url", "u", ""},
		{"depth", "d", "1"},
		{"threads", "t", "8"},
		{"timeout", "T", "1m0s"},
		{"config", "c", ""},
		{"output", "o", ""},
		{"json", "j", "false"},
		{"markdown", "m", "false"},
		{"proxy", "", ""},
		{"metrics-file", "", ""},
		{"no-history", "", "false"},
		{"db-dir", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads flags", func(t *testing.T) {
		t.Parallel()
		cmd := NewScanCmd()
		dbDir := t.TempDir()
		if err := cmd.ParseFlags([]string{
			"-u", "https://example.com", "-d", "3", "-t", "4", "-T", "5s",
			"-c", emptyConfigFile(t), "-o", "pages.csv", "-j",
			"--proxy", "127.0.0.1:9050", "--no-history", "--db-dir", dbDir,
		}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.URL != "https://example.com" || cfg.Depth != 3 || cfg.Threads != 4 {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("expected timeout 5s, got %s", cfg.Timeout)
		}
		if cfg.OutputFile != "pages.csv" || !cfg.JSONReport || cfg.MarkdownReport {
			t.Errorf("unexpected output settings: %+v", cfg)
		}
		if cfg.Proxy != "127.0.0.1:9050" {
			t.Errorf("expected proxy, got %q", cfg.Proxy)
		}
		if cfg.SaveToDB {
			t.Error("expected history to be disabled")
		}
		if cfg.DBDir != dbDir {
			t.Errorf("expected db dir %q, got %q", dbDir, cfg.DBDir)
		}
	})

	t.Run("positional url", func(t *testing.T) {
		t.Parallel()
		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"-c", emptyConfigFile(t)}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.URL != "https://example.com" {
			t.Errorf("expected positional URL, got %q", cfg.URL)
		}
		if !cfg.SaveToDB || cfg.DBDir != config.XDGDataDir() {
			t.Error("expected history enabled in the XDG data directory by default")
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()
		cmd := NewScanCmd()
		missing := filepath.Join(t.TempDir(), "missing.yaml")
		if err := cmd.ParseFlags([]string{"-u", "https://example.com", "-c", missing}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		_, err := buildConfig(cmd, nil)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestBuildConfigWithConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "benfordscan.yaml")
	content := `defaults:
  depth: 3
  threads: 2
  timeout: 10s
  headers:
    Accept-Language: en
sites:
  example.com:
    depth: 5
    cookie: "session=abc"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	tests := []struct {
		name        string
		args        []string
		wantDepth   int
		wantThreads int
		wantCookie  string
	}{
		{
			name:        "site entry overrides defaults",
			args:        []string{"-u", "https://example.com/start", "-c", path},
			wantDepth:   5,
			wantThreads: 2,
			wantCookie:  "session=abc",
		},
		{
			name:        "defaults for other hosts",
			args:        []string{"-u", "https://other.example", "-c", path},
			wantDepth:   3,
			wantThreads: 2,
		},
		{
			name:        "explicit flags win",
			args:        []string{"-u", "https://example.com", "-c", path, "-d", "1", "-t", "6"},
			wantDepth:   1,
			wantThreads: 6,
			wantCookie:  "session=abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := NewScanCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("failed to parse flags: %v", err)
			}
			cfg, err := buildConfig(cmd, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Depth != tt.wantDepth {
				t.Errorf("expected depth %d, got %d", tt.wantDepth, cfg.Depth)
			}
			if cfg.Threads != tt.wantThreads {
				t.Errorf("expected threads %d, got %d", tt.wantThreads, cfg.Threads)
			}
			if cfg.Cookie != tt.wantCookie {
				t.Errorf("expected cookie %q, got %q", tt.wantCookie, cfg.Cookie)
			}
			if cfg.Timeout != 10*time.Second {
				t.Errorf("expected timeout 10s, got %s", cfg.Timeout)
			}
			if cfg.Headers["Accept-Language"] != "en" {
				t.Errorf("expected default header, got %v", cfg.Headers)
			}
		})
	}
}

func TestRunScanCmdRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	cfgPath := emptyConfigFile(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no url", []string{"-c", cfgPath}, config.ErrNoURL},
		{"relative url", []string{"-u", "example.com", "-c", cfgPath}, config.ErrInvalidURL},
		{"negative depth", []string{"-u", "https://example.com", "-d", "-1", "-c", cfgPath}, config.ErrInvalidDepth},
		{"zero threads", []string{"-u", "https://example.com", "-t", "0", "-c", cfgPath}, config.ErrInvalidThreads},
		{"negative timeout", []string{"-u", "https://example.com", "-T", "-1s", "-c", cfgPath}, config.ErrInvalidTimeout},
		{"conflicting formats", []string{"-u", "https://example.com", "-j", "-m", "-c", cfgPath}, config.ErrConflictingReportFormats},
		{"bad proxy", []string{"-u", "https://example.com", "--proxy", "localhost", "-c", cfgPath}, config.ErrInvalidProxy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			stdout, _, err := executeScan(t, append(tt.args, "--no-history")...)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if strings.Contains(stdout, "Running With") {
				t.Error("expected rejection before the scan starts")
			}
		})
	}
}

func TestRunScanCmd(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	dbDir := t.TempDir()
	csvPath := filepath.Join(t.TempDir(), "out", "pages.csv")
	metricsPath := filepath.Join(t.TempDir(), "benfordscan.prom")

	stdout, _, err := executeScan(t,
		"-u", srv.URL, "-d", "1", "-t", "2",
		"-c", emptyConfigFile(t), "-o", csvPath, "--db-dir", dbDir,
		"--metrics-file", metricsPath,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("prints banner and totals", func(t *testing.T) {
		for _, want := range []string{
			"Running With:\n  Url: " + srv.URL + "\n  Depth: 1\n  Threads: 2\n",
			"[+a]",
			"Total Initial Links 1\n",
			"Total Success   2\n",
			"Total   Fails   0\n",
			"Benford MAD:",
		} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
			}
		}
	})

	t.Run("writes page report", func(t *testing.T) {
		data, err := os.ReadFile(csvPath)
		if err != nil {
			t.Fatalf("failed to read page report: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), data)
		}
		// 123 and 45.60 (canonical 456) start with 1 and 4, end with 3 and 6.
		want := `"` + srv.URL + `", 1, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 1, 0, 0, 0`
		if lines[0] != want {
			t.Errorf("expected %q, got %q", want, lines[0])
		}
	})

	t.Run("writes metrics", func(t *testing.T) {
		data, err := os.ReadFile(metricsPath)
		if err != nil {
			t.Fatalf("failed to read metrics: %v", err)
		}
		for _, want := range []string{
			`benfordscan_fetches_total{result="success"} 2`,
			"benfordscan_pages 2",
		} {
			if !strings.Contains(string(data), want) {
				t.Errorf("expected metrics to contain %q, got:\n%s", want, data)
			}
		}
	})

	t.Run("saves history", func(t *testing.T) {
		db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to open history: %v", err)
		}
		defer db.Close()

		scans, err := db.ListScans(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("failed to list scans: %v", err)
		}
		if len(scans) != 1 {
			t.Fatalf("expected 1 scan, got %d", len(scans))
		}
		if scans[0].Success != 2 || scans[0].Pages != 2 {
			t.Errorf("unexpected stored scan: %+v", scans[0])
		}
	})
}

func TestRunScanCmdJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	stdout, stderr, err := executeScan(t,
		"-u", srv.URL, "-d", "0", "-j", "--no-history", "-c", emptyConfigFile(t),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got report.JSONReport
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("expected JSON on stdout: %v\n%s", err, stdout)
	}
	if got.Summary.Success != 1 || got.Summary.InitialLinks != 1 {
		t.Errorf("unexpected summary: %+v", got.Summary)
	}
	if !strings.Contains(stderr, "Running With") {
		t.Error("expected banner on stderr")
	}
}

func TestRunScanCmdUnreachableSeed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, _, err := executeScan(t, "-u", url, "--no-history", "-T", "2s", "-c", emptyConfigFile(t))
	if !errors.Is(err, crawler.ErrSeedUnreachable) {
		t.Errorf("expected ErrSeedUnreachable, got %v", err)
	}
}

func TestRunScanCSVFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	stdout, stderr, err := executeScan(t,
		"-u", srv.URL, "-d", "0", "--no-history", "-c", emptyConfigFile(t),
		"-o", filepath.Join(blocker, "pages.csv"),
	)
	if err != nil {
		t.Fatalf("expected the scan to succeed, got %v", err)
	}
	if !strings.Contains(stdout, "Total Success   1") {
		t.Errorf("expected summary despite CSV failure, got:\n%s", stdout)
	}
	if !strings.Contains(stderr, "Warning:") {
		t.Errorf("expected warning on stderr, got:\n%s", stderr)
	}
}
