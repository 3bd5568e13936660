package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/benfordscan/internal/config"
	"github.com/nao1215/benfordscan/internal/database"
	"github.com/nao1215/benfordscan/internal/model"
)

// NewHistoryCmd creates the history command.
// It reads the scans stored by "benfordscan scan".
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [seed-url]",
		Short: "Show and compare stored scans",
		Long: `History displays scans saved in the history database.

Without flags it compares the two most recent scans of the seed URL:
crawl counters and leading digit proportions side by side, together with
the change in Benford deviation.

Examples:
  # Compare the latest two scans of a site
  benfordscan history https://example.com

  # List every stored scan of a site
  benfordscan history --list https://example.com

  # List all scanned seed URLs
  benfordscan history --list-seeds

  # Output the comparison as JSON
  benfordscan history --json https://example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified seed URL")
	cmd.Flags().BoolP("list-seeds", "L", false,
		"List all scanned seed URLs in the database")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listSeeds, err := cmd.Flags().GetBool("list-seeds")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	var seed string
	if !listSeeds {
		if len(args) == 0 {
			return errors.New("seed URL is required (use --list-seeds to see available seeds)")
		}
		seed = args[0]
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case listSeeds:
		return listScannedSeeds(ctx, db, out, jsonOutput)
	case listHistory:
		return listScanHistory(ctx, db, out, seed, jsonOutput)
	default:
		return compareLatest(ctx, db, out, seed, jsonOutput)
	}
}

// listScannedSeeds lists every seed URL with stored scans.
func listScannedSeeds(ctx context.Context, db *database.ScanDB, out io.Writer, jsonOutput bool) error {
	seeds, err := db.ListSeeds(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		if seeds == nil {
			seeds = []string{}
		}
		return writeJSON(out, seeds)
	}

	if len(seeds) == 0 {
		fmt.Fprintln(out, "No scans found in the database.")
		fmt.Fprintln(out, "\nUse 'benfordscan scan -u <url>' to scan a site.")
		return nil
	}

	fmt.Fprintf(out, "Scanned seeds (%d):\n\n", len(seeds))
	for _, seed := range seeds {
		fmt.Fprintf(out, "  • %s\n", seed)
	}
	fmt.Fprintln(out, "\nUse 'benfordscan history --list <url>' to see the scans of a seed.")

	return nil
}

// listScanHistory lists the stored scans of seed, newest first.
func listScanHistory(ctx context.Context, db *database.ScanDB, out io.Writer, seed string, jsonOutput bool) error {
	scans, err := db.ListScans(ctx, seed)
	if err != nil {
		return err
	}

	if jsonOutput {
		if scans == nil {
			scans = []database.ScanRecord{}
		}
		return writeJSON(out, scans)
	}

	if len(scans) == 0 {
		fmt.Fprintf(out, "No scan history found for %s\n", seed)
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", seed, len(scans))
	fmt.Fprintf(out, "  %-6s  %-20s  %5s  %7s  %7s  %7s  %s\n",
		"ID", "Date", "Depth", "Pages", "Success", "Fail", "Benford MAD")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 78))

	for _, s := range scans {
		fmt.Fprintf(out, "  %-6d  %-20s  %5d  %7d  %7d  %7d  %s\n",
			s.ID,
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			s.Depth,
			s.Pages,
			s.Success,
			s.Fail,
			formatMAD(s.Summary),
		)
	}

	return nil
}

// ScanComparison is the JSON document written by "history --json".
type ScanComparison struct {
	Seed     string               `json:"seed"`
	Previous *database.ScanRecord `json:"previous"`
	Current  *database.ScanRecord `json:"current"`

	// MADChange is current minus previous Benford deviation.
	MADChange float64 `json:"mad_change"`
}

// compareLatest compares the two most recent scans of seed.
func compareLatest(ctx context.Context, db *database.ScanDB, out io.Writer, seed string, jsonOutput bool) error {
	scans, err := db.LatestScans(ctx, seed, 2)
	if err != nil {
		return err
	}

	if len(scans) < 2 {
		return fmt.Errorf("at least two scans of %s are required for comparison (found %d)", seed, len(scans))
	}

	current, previous := &scans[0], &scans[1]
	comparison := &ScanComparison{
		Seed:      seed,
		Previous:  previous,
		Current:   current,
		MADChange: current.Summary.BenfordMAD - previous.Summary.BenfordMAD,
	}

	if jsonOutput {
		return writeJSON(out, comparison)
	}

	writeComparison(out, comparison)
	return nil
}

// writeComparison prints two scans side by side.
func writeComparison(out io.Writer, c *ScanComparison) {
	prev, cur := c.Previous, c.Current

	fmt.Fprintf(out, "Comparison for %s\n\n", c.Seed)
	fmt.Fprintf(out, "  %-14s  %20s  %20s\n", "", "Previous", "Current")
	fmt.Fprintf(out, "  %-14s  %20s  %20s\n", "Scan",
		fmt.Sprintf("#%d", prev.ID), fmt.Sprintf("#%d", cur.ID))
	fmt.Fprintf(out, "  %-14s  %20s  %20s\n", "Date",
		prev.StartedAt.Local().Format("2006-01-02 15:04:05"),
		cur.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  %-14s  %20d  %20d\n", "Initial links", prev.InitialLinks, cur.InitialLinks)
	fmt.Fprintf(out, "  %-14s  %20d  %20d\n", "Pages", prev.Pages, cur.Pages)
	fmt.Fprintf(out, "  %-14s  %20d  %20d\n", "Success", prev.Success, cur.Success)
	fmt.Fprintf(out, "  %-14s  %20d  %20d\n", "Fail", prev.Fail, cur.Fail)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  Leading digit proportions:")
	prevP := prev.Summary.StartDigits.Proportions()
	curP := cur.Summary.StartDigits.Proportions()
	expected := model.BenfordExpected()
	fmt.Fprintf(out, "  %5s  %9s  %9s  %9s  %8s\n", "DIGIT", "PREVIOUS", "CURRENT", "BENFORD", "CHANGE")
	for d := 1; d <= model.DigitCount; d++ {
		i := d - 1
		fmt.Fprintf(out, "  %5d  %8.1f%%  %8.1f%%  %8.1f%%  %+7.1f%%\n",
			d, prevP[i]*100, curP[i]*100, expected[i]*100, (curP[i]-prevP[i])*100)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "  Benford MAD: %s -> %s", formatMAD(prev.Summary), formatMAD(cur.Summary))
	switch {
	case prev.Summary.StartDigits.Total() == 0 || cur.Summary.StartDigits.Total() == 0:
		fmt.Fprintln(out)
	case c.MADChange < 0:
		fmt.Fprintln(out, " (closer to Benford)")
	case c.MADChange > 0:
		fmt.Fprintln(out, " (further from Benford)")
	default:
		fmt.Fprintln(out, " (unchanged)")
	}
}

// formatMAD renders a summary's Benford deviation and conformity.
func formatMAD(s *model.Summary) string {
	if s == nil || s.StartDigits.Total() == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.4f (%s)", s.BenfordMAD, s.Conformity())
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
