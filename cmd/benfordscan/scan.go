package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/benfordscan/internal/config"
	"github.com/nao1215/benfordscan/internal/crawler"
	"github.com/nao1215/benfordscan/internal/database"
	"github.com/nao1215/benfordscan/internal/log"
	"github.com/nao1215/benfordscan/internal/metrics"
	"github.com/nao1215/benfordscan/internal/model"
	"github.com/nao1215/benfordscan/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url]",
		Short: "Crawl a website and count leading and trailing digits",
		Long: `Scan crawls a website starting from the seed URL and counts, for every
number found in the fetched pages, its first and last significant digit.

The seed page is always fetched. Its links are split between the crawl
workers, and each worker follows links up to --depth levels below the
seed. Every URL is fetched at most once per scan.

Progress is printed as [+a] for a processed page and [-a] for a failed
one, where the letter identifies the worker.

Examples:
  # Scan a site with default depth and threads
  benfordscan scan -u https://example.com

  # Follow links three levels deep with 16 workers
  benfordscan scan -u https://example.com -d 3 -t 16

  # Save the per-page digit counts to a file
  benfordscan scan -u https://example.com -o pages.csv

  # Output the summary as JSON
  benfordscan scan -u https://example.com --json

  # Crawl through a SOCKS5 proxy
  benfordscan scan -u http://example.onion --proxy 127.0.0.1:9050`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScanCmd,
	}

	cmd.Flags().StringP("url", "u", "",
		"Seed URL to start crawling from (required)")
	cmd.Flags().IntP("depth", "d", config.DefaultDepth,
		"Number of link levels followed below the seed page")
	cmd.Flags().IntP("threads", "t", config.DefaultThreads,
		"Number of concurrent crawl workers")
	cmd.Flags().DurationP("timeout", "T", config.DefaultTimeout,
		"Timeout for each request (0 disables it)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: ./.benfordscan, the XDG config dir, then ~/.benfordscan)")

	cmd.Flags().StringP("output", "o", "",
		"Write per-page digit counts to the specified file (creates directories if needed)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().String("metrics-file", "",
		"Write Prometheus metrics for the scan to the specified file")

	cmd.Flags().Bool("no-history", false,
		"Do not save the scan to the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Interrupting stops the crawl; pages already processed are still reported.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScan(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the config file.
// Flags set explicitly on the command line override the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.URL, err = cmd.Flags().GetString("url")
	if err != nil {
		return nil, err
	}
	if cfg.URL == "" && len(args) > 0 {
		cfg.URL = args[0]
	}

	cfg.Depth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.Threads, err = cmd.Flags().GetInt("threads")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Proxy, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; the default lookup may
	// find nothing.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.ApplySiteConfig(cfg.SiteConfigs.GetSiteConfig(cfg.URL), cmd.Flags().Changed)

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.MetricsFile, err = cmd.Flags().GetString("metrics-file")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	return cfg, nil
}

// runScan crawls cfg.URL and reports the result. The summary goes to out;
// when it is JSON or Markdown, the banner and progress markers go to errOut
// so the summary stays machine-readable.
func runScan(ctx context.Context, cfg *config.Config, out, errOut io.Writer, logger *slog.Logger) error {
	progressOut := out
	if cfg.JSONReport || cfg.MarkdownReport {
		progressOut = errOut
	}

	fmt.Fprintf(progressOut, "Running With:\n  Url: %s\n  Depth: %d\n  Threads: %d\n",
		cfg.URL, cfg.Depth, cfg.Threads)

	logger.Debug("starting scan",
		"url", cfg.URL,
		"timeout", cfg.Timeout,
		"proxy", cfg.Proxy,
		"headers", cfg.Headers,
		"cookie", cfg.Cookie,
		"saveToDB", cfg.SaveToDB,
	)

	client, err := crawler.NewHTTPClient(crawler.ClientOptions{
		Timeout:         cfg.Timeout,
		Proxy:           cfg.Proxy,
		Cookie:          cfg.Cookie,
		Headers:         cfg.Headers,
		MaxConnsPerHost: cfg.Threads,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	var fetcher crawler.Fetcher = crawler.NewHTTPFetcher(client,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	)

	var scanMetrics *metrics.Metrics
	if cfg.MetricsFile != "" {
		scanMetrics = metrics.New()
		fetcher = scanMetrics.InstrumentFetcher(fetcher)
	}
	spider := crawler.NewSpider(fetcher,
		crawler.WithDepth(cfg.Depth),
		crawler.WithThreads(cfg.Threads),
		crawler.WithProgress(crawler.NewProgress(progressOut)),
		crawler.WithLogger(logger),
	)

	started := time.Now()
	result, err := spider.Crawl(ctx, cfg.URL)
	if err != nil {
		return err
	}
	// Progress markers carry no newline.
	fmt.Fprintln(progressOut)

	summary := model.Summarize(result, model.ScanMeta{
		Depth:     cfg.Depth,
		Threads:   cfg.Threads,
		StartedAt: started,
		Duration:  time.Since(started),
	})

	if err := outputReport(cfg, out, summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if cfg.OutputFile != "" {
		if err := report.WriteCSVFile(cfg.OutputFile, result.Report.Pages); err != nil {
			logger.Error("failed to write page report", "path", cfg.OutputFile, "error", err)
			fmt.Fprintf(errOut, "Warning: %v\n", err)
		} else {
			logger.Debug("page report written", "path", cfg.OutputFile, "pages", len(result.Report.Pages))
		}
	}

	if scanMetrics != nil {
		scanMetrics.ObserveSummary(summary)
		if err := scanMetrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("failed to write metrics", "path", cfg.MetricsFile, "error", err)
			fmt.Fprintf(errOut, "Warning: %v\n", err)
		}
	}

	// Interrupted scans are saved too; the cancelled context must not abort the write.
	if err := saveScan(context.WithoutCancel(ctx), cfg, summary, result.Report.Pages, logger); err != nil {
		logger.Error("failed to save scan history", "error", err)
	}

	return nil
}

// outputReport writes the summary in the requested format.
func outputReport(cfg *config.Config, out io.Writer, summary *model.Summary) error {
	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out)
	}
	_, err := w.Write(summary)
	return err
}

// saveScan stores the scan in the history database. It is a no-op when
// history is disabled.
func saveScan(ctx context.Context, cfg *config.Config, summary *model.Summary, pages []*model.PageStats, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveScan(ctx, summary, pages)
	if err != nil {
		return err
	}

	logger.Debug("scan saved to history", "id", id, "db", db.Path())
	return nil
}
