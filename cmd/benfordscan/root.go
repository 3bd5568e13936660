package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for benfordscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benfordscan",
		Short: "Crawl a website and test its numbers against Benford's Law",
		Long: `benfordscan crawls a website starting from a seed URL, extracts every
number from the fetched pages, and counts the first and last significant
digit of each one.

Naturally occurring data sets follow Benford's Law: about 30% of numbers
start with 1 and fewer than 5% start with 9. benfordscan reports how far
the crawled pages deviate from that distribution.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
