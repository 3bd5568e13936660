package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/benfordscan/internal/model"
)

// FileName is the name of the SQLite file created inside the database directory.
const FileName = "benfordscan.db"

// storedTimeFormat is the layout used for scan timestamps. It sorts
// lexically in chronological order when times are stored in UTC.
const storedTimeFormat = "2006-01-02 15:04:05.000000"

// ScanDB provides SQLite-based storage for scan history.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *ScanDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- One row per scan run
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		depth INTEGER NOT NULL,
		threads INTEGER NOT NULL,
		initial_links INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		success INTEGER NOT NULL,
		fail INTEGER NOT NULL,
		interrupted INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		summary_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scans_seed ON scans(seed);
	CREATE INDEX IF NOT EXISTS idx_scans_started ON scans(started_at);

	-- Per-page digit histograms of a scan
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		digest TEXT,
		start_digits TEXT NOT NULL,
		end_digits TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_scan ON pages(scan_id);
	CREATE INDEX IF NOT EXISTS idx_pages_digest ON pages(digest);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// ScanRecord is a stored scan.
type ScanRecord struct {
	ID           int64          `json:"id"`
	Seed         string         `json:"seed"`
	Depth        int            `json:"depth"`
	Threads      int            `json:"threads"`
	InitialLinks int            `json:"initial_links"`
	Pages        int            `json:"pages"`
	Success      uint64         `json:"success"`
	Fail         uint64         `json:"fail"`
	Interrupted  bool           `json:"interrupted"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Summary      *model.Summary `json:"summary"`
}

// PageRecord is a stored page of a scan.
type PageRecord struct {
	ScanID      int64
	URL         string
	Digest      string
	StartDigits model.DigitHistogram
	EndDigits   model.DigitHistogram
}

// SaveScan stores the summary and its pages in one transaction and returns
// the new scan ID.
func (sdb *ScanDB) SaveScan(ctx context.Context, summary *model.Summary, pages []*model.PageStats) (int64, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	started := summary.StartedAt.UTC()
	finished := started.Add(summary.Duration)

	result, err := tx.ExecContext(ctx, `
	INSERT INTO scans (seed, depth, threads, initial_links, pages, success, fail, interrupted, started_at, finished_at, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		summary.Seed,
		summary.Depth,
		summary.Threads,
		summary.InitialLinks,
		summary.Pages,
		int64(summary.Success), //nolint:gosec // counts never approach MaxInt64
		int64(summary.Fail),    //nolint:gosec // counts never approach MaxInt64
		summary.Interrupted,
		started.Format(storedTimeFormat),
		finished.Format(storedTimeFormat),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan: %w", err)
	}

	scanID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read scan id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (scan_id, url, digest, start_digits, end_digits)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pages {
		if _, err := stmt.ExecContext(ctx, scanID, p.URL, p.Digest, p.StartDigits.String(), p.EndDigits.String()); err != nil {
			return 0, fmt.Errorf("failed to save page %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan: %w", err)
	}
	return scanID, nil
}

// ListSeeds returns every seed URL with at least one stored scan.
func (sdb *ScanDB) ListSeeds(ctx context.Context) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx, `SELECT DISTINCT seed FROM scans ORDER BY seed`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds: %w", err)
	}
	defer rows.Close()

	var seeds []string
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}

	return seeds, rows.Err()
}

const scanColumns = `id, seed, depth, threads, initial_links, pages, success, fail, interrupted, started_at, finished_at, summary_json`

// ListScans returns every scan of seed, newest first.
func (sdb *ScanDB) ListScans(ctx context.Context, seed string) ([]ScanRecord, error) {
	return sdb.queryScans(ctx, `
	SELECT `+scanColumns+` FROM scans
	WHERE seed = ?
	ORDER BY started_at DESC, id DESC
	`, seed)
}

// LatestScans returns at most n scans of seed, newest first.
func (sdb *ScanDB) LatestScans(ctx context.Context, seed string, n int) ([]ScanRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	return sdb.queryScans(ctx, `
	SELECT `+scanColumns+` FROM scans
	WHERE seed = ?
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`, seed, n)
}

// GetScan retrieves a scan by its database ID. It returns nil when no scan
// has that ID.
func (sdb *ScanDB) GetScan(ctx context.Context, id int64) (*ScanRecord, error) {
	row := sdb.db.QueryRowContext(ctx, `SELECT `+scanColumns+` FROM scans WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListPages returns the stored pages of a scan ordered by URL.
func (sdb *ScanDB) ListPages(ctx context.Context, scanID int64) ([]PageRecord, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT scan_id, url, digest, start_digits, end_digits
	FROM pages
	WHERE scan_id = ?
	ORDER BY url, id
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []PageRecord
	for rows.Next() {
		var p PageRecord
		var digest sql.NullString
		var start, end string
		if err := rows.Scan(&p.ScanID, &p.URL, &digest, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		p.Digest = digest.String
		if p.StartDigits, err = parseHistogram(start); err != nil {
			return nil, err
		}
		if p.EndDigits, err = parseHistogram(end); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// queryScans runs a scans query and decodes every row.
func (sdb *ScanDB) queryScans(ctx context.Context, query string, args ...any) ([]ScanRecord, error) {
	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var results []ScanRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *rec)
	}

	return results, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord decodes one scans row.
func scanRecord(row rowScanner) (*ScanRecord, error) {
	var rec ScanRecord
	var success, fail int64
	var started, finished, summaryJSON string

	err := row.Scan(
		&rec.ID,
		&rec.Seed,
		&rec.Depth,
		&rec.Threads,
		&rec.InitialLinks,
		&rec.Pages,
		&success,
		&fail,
		&rec.Interrupted,
		&started,
		&finished,
		&summaryJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.Success = uint64(success) //nolint:gosec // stored from uint64
	rec.Fail = uint64(fail)       //nolint:gosec // stored from uint64
	rec.StartedAt = parseTimestamp(started)
	rec.FinishedAt = parseTimestamp(finished)

	var summary model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	rec.Summary = &summary

	return &rec, nil
}

// parseHistogram reverses DigitHistogram.String.
func parseHistogram(s string) (model.DigitHistogram, error) {
	var h model.DigitHistogram
	parts := strings.Split(s, ",")
	if len(parts) != model.DigitCount {
		return h, fmt.Errorf("failed to parse histogram %q: expected %d buckets, got %d", s, model.DigitCount, len(parts))
	}
	for i, part := range parts {
		c, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return h, fmt.Errorf("failed to parse histogram %q: %w", s, err)
		}
		h[i] = c
	}
	return h, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",  // SQLite default datetime format, fractions accepted
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",  // ISO 8601 without timezone
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
